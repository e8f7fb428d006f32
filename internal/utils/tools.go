package utils

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func EncryptPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// DecodeSignatureData decodes the signature payload sent by the browser
// client: either a "data:image/png;base64," data URI or bare base64.
func DecodeSignatureData(data string) ([]byte, error) {
	const dataURIPrefix = "data:image/png;base64,"

	if strings.HasPrefix(data, "data:") {
		if !strings.HasPrefix(data, dataURIPrefix) {
			return nil, fmt.Errorf("unsupported data URI, want %q", dataURIPrefix)
		}
		data = data[len(dataURIPrefix):]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode signature payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty signature payload")
	}
	return raw, nil
}
