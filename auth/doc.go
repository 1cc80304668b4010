// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides HMAC keys for group admins and participants.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(groupID, salt)
	err := auth.ValidateAdminKey(groupID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same group ID and salt always produce the same key. This allows validation
without storing the key in the database. It is returned once when the group
is created and gates settings, deletion, and the assignment draw.

# User Keys

User keys work the same way over the participant's user ID:

	userKey := auth.GenerateUserKey(userID, salt)
	err := auth.ValidateUserKey(userID, userKey, salt)

A participant receives the key on joining and presents it to read their
assignment, set a wish, or exchange anonymous messages.

Admin and user keys are signed under different scopes, so a group and a user
with the same numeric ID never share a key.
*/
package auth
