// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidUserKey  = errors.New("invalid user key")
)

// sign returns the URL-safe, unpadded HMAC-SHA256 of scope:id.
// The scope keeps admin and user keys apart when both use the same salt.
func sign(scope string, id int64, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(scope))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.FormatInt(id, 10)))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// GenerateAdminKey creates an HMAC-based admin key for a group
// This is deterministic and verifiable
func GenerateAdminKey(groupID int64, salt string) string {
	return sign("group", groupID, salt)
}

// ValidateAdminKey checks if the provided admin key is valid for the group
func ValidateAdminKey(groupID int64, adminKey, salt string) error {
	expected := GenerateAdminKey(groupID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateUserKey creates the key a participant presents to read their
// assignment, set a wish, or exchange messages.
func GenerateUserKey(userID int64, salt string) string {
	return sign("user", userID, salt)
}

// ValidateUserKey checks if the provided key belongs to the user
func ValidateUserKey(userID int64, userKey, salt string) error {
	expected := GenerateUserKey(userID, salt)
	if !hmac.Equal([]byte(userKey), []byte(expected)) {
		return ErrInvalidUserKey
	}
	return nil
}
