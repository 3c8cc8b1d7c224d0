package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sethshivam11/project-store-backend/logging"
	"github.com/sethshivam11/project-store-backend/models"
	"github.com/sethshivam11/project-store-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const verifyCodeTTL = 10 * time.Minute

var usernameRegex = regexp.MustCompile(`^[a-z_0-9.]+$`)

// UserService struktura
type UserService struct {
	UserCollection Collection
	JWTService     *JWTService
	Media          *utils.CloudinaryClient
}

func NewUserService(userCollection Collection, jwtService *JWTService, media *utils.CloudinaryClient) *UserService {
	return &UserService{
		UserCollection: userCollection,
		JWTService:     jwtService,
		Media:          media,
	}
}

// Register kreira neverifikovanog korisnika i šalje verifikacioni kod na email
func (s *UserService) Register(ctx context.Context, user models.User, avatar io.Reader, avatarName string) (models.User, error) {
	if user.FullName == "" && user.Username == "" && user.Email == "" && user.Password == "" {
		return models.User{}, utils.NewApiError(http.StatusBadRequest, "All fields are required")
	}

	// Provera da li korisnik već postoji
	var existing models.User
	err := s.UserCollection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"username": user.Username}, {"email": user.Email}},
	}).Decode(&existing)
	if err == nil {
		if existing.IsMailVerified {
			return models.User{}, utils.NewApiError(http.StatusConflict, "Username or email already exists")
		}
		// Neverifikovani duplikat se briše pre novog upisa
		if _, err := s.UserCollection.DeleteOne(ctx, bson.M{"_id": existing.ID}); err != nil {
			logging.Logger.Errorf("Event ID: USER_CLEANUP_FAILED, Description: Failed to delete unverified user %s: %v", existing.Username, err)
			return models.User{}, utils.NewApiError(http.StatusInternalServerError, "Something went wrong while registering the user")
		}
	}

	user.Avatar = models.DefaultAvatar
	if avatar != nil {
		url, err := s.Media.Upload(ctx, avatarName, avatar)
		if err != nil {
			logging.Logger.Warnf("Event ID: AVATAR_UPLOAD_FAILED, Description: %v", err)
			return models.User{}, utils.NewApiError(http.StatusBadRequest, "Error while uploading the avatar file")
		}
		user.Avatar = url
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return models.User{}, utils.NewApiError(http.StatusInternalServerError, "Something went wrong while registering the user")
	}
	user.Password = hashed

	user.ID = primitive.NewObjectID()
	user.VerifyCode, user.VerifyCodeExpiry = generateVerifyCode()
	user.IsMailVerified = false

	if _, err := s.UserCollection.InsertOne(ctx, user); err != nil {
		logging.Logger.Errorf("Event ID: USER_INSERT_FAILED, Description: %v", err)
		return models.User{}, utils.NewApiError(http.StatusInternalServerError, "Something went wrong while registering the user")
	}

	if err := utils.SendVerificationEmail(user.Email, user.VerifyCode, user.Username); err != nil {
		logging.Logger.Errorf("Event ID: VERIFY_MAIL_FAILED, Description: Failed to send code to %s: %v", user.Email, err)
		return models.User{}, utils.NewApiError(http.StatusInternalServerError, "Failed to send verification email")
	}

	return user, nil
}

// Login proverava kredencijale i izdaje access/refresh par
func (s *UserService) Login(ctx context.Context, username, email, password string) (models.User, string, string, error) {
	if (username == "" && email == "") || password == "" {
		return models.User{}, "", "", utils.NewApiError(http.StatusBadRequest, "Username or email is required")
	}

	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"username": username}, {"email": email}},
	}).Decode(&user)
	if err != nil {
		return models.User{}, "", "", utils.NewApiError(http.StatusNotFound, "User not found")
	}

	if !utils.ComparePassword(password, user.Password) {
		return models.User{}, "", "", utils.NewApiError(http.StatusUnauthorized, "Invalid credentials")
	}

	accessToken, refreshToken, err := s.IssueTokens(ctx, user.ID)
	if err != nil {
		return models.User{}, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

// IssueTokens generiše oba tokena i čuva refresh token na korisniku
// (jedna aktivna sesija po korisniku).
func (s *UserService) IssueTokens(ctx context.Context, userID primitive.ObjectID) (string, string, error) {
	accessToken, err := s.JWTService.GenerateAccessToken(userID.Hex())
	if err != nil {
		return "", "", utils.NewApiError(http.StatusInternalServerError, "Something went wrong, while generating access and refresh tokens")
	}
	refreshToken, err := s.JWTService.GenerateRefreshToken(userID.Hex())
	if err != nil {
		return "", "", utils.NewApiError(http.StatusInternalServerError, "Something went wrong, while generating access and refresh tokens")
	}

	result, err := s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"refreshToken": refreshToken}},
	)
	if err != nil || result.MatchedCount == 0 {
		return "", "", utils.NewApiError(http.StatusInternalServerError, "Something went wrong, while generating access and refresh tokens")
	}

	return accessToken, refreshToken, nil
}

// RenewAccessToken validira refresh token i izdaje novi access token.
// Svaka greška poništava sesiju na strani klijenta (kolačići se brišu u handleru).
func (s *UserService) RenewAccessToken(ctx context.Context, refreshToken string) (models.User, string, error) {
	claims, err := s.JWTService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return models.User{}, "", utils.NewApiError(http.StatusUnauthorized, "Invalid token")
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, "", utils.NewApiError(http.StatusUnauthorized, "User not found")
	}

	if user.RefreshToken != refreshToken {
		return models.User{}, "", utils.NewApiError(http.StatusUnauthorized, "Refresh token mismatch")
	}

	accessToken, err := s.JWTService.GenerateAccessToken(user.ID.Hex())
	if err != nil {
		return models.User{}, "", utils.NewApiError(http.StatusInternalServerError, "Something went wrong, while renewing accessToken")
	}

	return user, accessToken, nil
}

// VerifyEmail menja kod za isMailVerified=true; kod je jednokratan
func (s *UserService) VerifyEmail(ctx context.Context, username, code string) error {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return utils.NewApiError(http.StatusNotFound, "User with username not found")
	}

	if err := checkVerifyCode(user, code); err != nil {
		return err
	}

	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"verifyCode": "", "isMailVerified": true}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to verify user")
	}

	return nil
}

func (s *UserService) ResendEmail(ctx context.Context, username string) error {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return utils.NewApiError(http.StatusNotFound, "Please check username or sign up again")
	}

	code, expiry := generateVerifyCode()
	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"verifyCode": code, "verifyCodeExpiry": expiry}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to issue a new code")
	}

	if err := utils.SendVerificationEmail(user.Email, code, user.Username); err != nil {
		logging.Logger.Errorf("Event ID: VERIFY_MAIL_FAILED, Description: Failed to send code to %s: %v", user.Email, err)
		return utils.NewApiError(http.StatusInternalServerError, "Failed to send verification email")
	}

	return nil
}

// ForgotPassword menja lozinku posle uspešne razmene koda
func (s *UserService) ForgotPassword(ctx context.Context, email, username, code, password string) error {
	if (email == "" && username == "") || code == "" || password == "" {
		return utils.NewApiError(http.StatusBadRequest, "All fields are required")
	}

	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": username}},
	}).Decode(&user)
	if err != nil {
		return utils.NewApiError(http.StatusNotFound, "User not found")
	}

	if err := checkVerifyCode(user, code); err != nil {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to change password")
	}

	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"password": hashed, "verifyCode": ""}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to change password")
	}

	return nil
}

// Logout briše sačuvani refresh token
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"refreshToken": ""}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to log out")
	}
	return nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	if oldPassword == "" && newPassword == "" {
		return utils.NewApiError(http.StatusBadRequest, "Both passwords are required")
	}
	if oldPassword == newPassword {
		return utils.NewApiError(http.StatusBadRequest, "Old and new passwords cannot be same")
	}

	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return utils.NewApiError(http.StatusNotFound, "User not found")
	}

	if !utils.ComparePassword(oldPassword, user.Password) {
		return utils.NewApiError(http.StatusUnauthorized, "Invalid password")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to update password")
	}

	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hashed}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to update password")
	}

	return nil
}

// UpdateAvatar postavlja novi avatar pa briše stari sa media store-a
func (s *UserService) UpdateAvatar(ctx context.Context, user models.User, avatarName string, avatar io.Reader) (string, error) {
	url, err := s.Media.Upload(ctx, avatarName, avatar)
	if err != nil {
		logging.Logger.Warnf("Event ID: AVATAR_UPLOAD_FAILED, Description: %v", err)
		return "", utils.NewApiError(http.StatusBadRequest, "Something went wrong, while uploading the avatar")
	}

	s.Media.DeleteQuietly(ctx, user.Avatar)

	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"avatar": url}},
	)
	if err != nil {
		return "", utils.NewApiError(http.StatusInternalServerError, "Something went wrong, while updating avatar")
	}

	return url, nil
}

// RemoveAvatar vraća avatar na podrazumevani; podrazumevani asset se ne briše
func (s *UserService) RemoveAvatar(ctx context.Context, userID primitive.ObjectID) error {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return utils.NewApiError(http.StatusNotFound, "User not found")
	}

	s.Media.DeleteQuietly(ctx, user.Avatar)

	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"avatar": models.DefaultAvatar}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to remove avatar")
	}

	return nil
}

// UpdateEmail menja email posle razmene koda i označava ga kao verifikovan
func (s *UserService) UpdateEmail(ctx context.Context, userID primitive.ObjectID, email, code string) error {
	if email == "" {
		return utils.NewApiError(http.StatusBadRequest, "Email is required")
	}

	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return utils.NewApiError(http.StatusNotFound, "User not found")
	}

	count, err := s.UserCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to update email")
	}
	if count > 0 {
		return utils.NewApiError(http.StatusConflict, "Please use another email")
	}

	if err := checkVerifyCode(user, code); err != nil {
		return err
	}

	_, err = s.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"email": email, "isMailVerified": true, "verifyCode": ""}},
	)
	if err != nil {
		return utils.NewApiError(http.StatusInternalServerError, "Failed to update email")
	}

	return nil
}

func (s *UserService) UpdateDetails(ctx context.Context, userID primitive.ObjectID, fullName, username string) (models.User, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return models.User{}, utils.NewApiError(http.StatusNotFound, "User not found")
	}

	update := bson.M{}
	if fullName != "" {
		update["fullName"] = fullName
		user.FullName = fullName
	}
	if username != "" {
		count, err := s.UserCollection.CountDocuments(ctx, bson.M{"username": username})
		if err != nil {
			return models.User{}, utils.NewApiError(http.StatusInternalServerError, "Failed to update details")
		}
		if count > 0 {
			return models.User{}, utils.NewApiError(http.StatusConflict, "User with username already exists")
		}
		update["username"] = username
		user.Username = username
	}

	if len(update) > 0 {
		_, err = s.UserCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
		if err != nil {
			return models.User{}, utils.NewApiError(http.StatusInternalServerError, "Failed to update details")
		}
	}

	return user, nil
}

// IsUsernameAvailable validira format pa proverava zauzetost; samo
// verifikovani korisnici rezervišu username
func (s *UserService) IsUsernameAvailable(ctx context.Context, username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}

	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == nil && user.IsMailVerified {
		return utils.NewApiError(http.StatusBadRequest, "Username not available")
	}

	return nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, utils.NewApiError(http.StatusBadRequest, "Invalid user ID format")
	}

	var user models.User
	err = s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return models.User{}, utils.NewApiError(http.StatusNotFound, "User not found")
	}

	return user, nil
}

func validateUsername(username string) error {
	if username == "" {
		return utils.NewApiError(http.StatusBadRequest, "Username is required")
	}
	if len(username) >= 30 {
		return utils.NewApiError(http.StatusBadRequest, "Username must be less than 30 letters")
	}
	if !usernameRegex.MatchString(username) {
		return utils.NewApiError(http.StatusBadRequest, "Username must contain only lowercase, ., _")
	}
	if strings.HasPrefix(username, ".") {
		return utils.NewApiError(http.StatusBadRequest, "Username cannot start with a .")
	}
	return nil
}

// checkVerifyCode je jedina kapija za razmenu koda; kod mora da se poklopi i
// da nije istekao
func checkVerifyCode(user models.User, code string) error {
	if code == "" || user.VerifyCode == "" || user.VerifyCode != code {
		return utils.NewApiError(http.StatusUnauthorized, "Invalid code")
	}
	if time.Now().After(user.VerifyCodeExpiry) {
		return utils.NewApiError(http.StatusUnauthorized, "Code has expired, Please request a new one")
	}
	return nil
}

// generateVerifyCode vuče kod iz crypto/rand; kod mora biti nepredvidljiv
func generateVerifyCode() (string, time.Time) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		logging.Logger.Fatalf("Event ID: RNG_FAILURE, Description: Failed to generate verification code: %v", err)
	}
	code := fmt.Sprintf("%06d", 100000+n.Int64())
	return code, time.Now().Add(verifyCodeTTL)
}
