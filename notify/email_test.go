package notify

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestBuildMessagePlainText(t *testing.T) {
	msg, err := BuildMessage("ops@example.com", []string{"a@example.com", "b@example.com"},
		"Model Performance Alert", "RMSE over limit", "", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	s := string(msg)
	for _, want := range []string{
		"From: ops@example.com",
		"To: a@example.com, b@example.com",
		"Subject: Model Performance Alert",
		"RMSE over limit",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("message missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "multipart") {
		t.Error("plain alert should not be multipart")
	}
}

func TestBuildMessageWithAttachment(t *testing.T) {
	csv := []byte("id,price\n1,2400\n")
	msg, err := BuildMessage("ops@example.com", []string{"a@example.com"},
		"Apartment Rent Predictions", "See attached.", "predictions.csv", csv)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	s := string(msg)
	if !strings.Contains(s, "multipart/mixed") {
		t.Error("expected multipart message")
	}
	if !strings.Contains(s, `filename="predictions.csv"`) {
		t.Error("attachment disposition missing")
	}
	if !strings.Contains(s, base64.StdEncoding.EncodeToString(csv)) {
		t.Error("attachment payload missing or not base64")
	}
}

func TestBuildMessageWrapsLongAttachments(t *testing.T) {
	payload := make([]byte, 600)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}

	msg, err := BuildMessage("ops@example.com", []string{"a@example.com"},
		"s", "b", "big.csv", payload)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	inAttachment := false
	for _, line := range strings.Split(string(msg), "\r\n") {
		if strings.Contains(line, "base64") {
			inAttachment = true
			continue
		}
		if inAttachment && len(line) > 76 {
			t.Errorf("base64 line longer than 76 chars: %d", len(line))
		}
	}
}
