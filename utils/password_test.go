package utils

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret-Pass!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-Pass!" {
		t.Fatal("password stored in plain text")
	}

	if !ComparePassword("s3cret-Pass!", hash) {
		t.Error("correct password rejected")
	}
	if ComparePassword("wrong-pass", hash) {
		t.Error("wrong password accepted")
	}
	if ComparePassword("s3cret-Pass!", "not-a-hash") {
		t.Error("garbage hash accepted")
	}
}
