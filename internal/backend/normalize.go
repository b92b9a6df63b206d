package backend

import (
	"encoding/json"
	"fmt"

	"github.com/medverse/portal/internal/models"
)

// The auth endpoints have shipped two response shapes over time:
//
//	{ "token": "...", "user": { "firstName": ..., ... } }
//	{ "token": "...", "firstName": ..., "lastName": ..., ... }
//
// Both are normalized into the canonical User here so nothing downstream
// has to care which backend version answered.

type nestedLogin struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type flatLogin struct {
	Token string `json:"token"`
	models.User
}

// NormalizeLogin decodes an auth response of either shape.
func NormalizeLogin(data []byte) (token string, user *models.User, err error) {
	var nested nestedLogin
	if err := json.Unmarshal(data, &nested); err != nil {
		return "", nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if nested.User != nil {
		return nested.Token, nested.User, nil
	}

	var flat flatLogin
	if err := json.Unmarshal(data, &flat); err != nil {
		return "", nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if flat.Token == "" {
		return "", nil, fmt.Errorf("auth response carried no token")
	}
	flatUser := flat.User
	return flat.Token, &flatUser, nil
}
