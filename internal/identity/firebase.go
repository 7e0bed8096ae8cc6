package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultFirebaseEndpoint = "https://identitytoolkit.googleapis.com/v1"

// Firebase talks to the Identity Toolkit REST API with a web API key.
type Firebase struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

func NewFirebase(apiKey string) *Firebase {
	return &Firebase{
		APIKey:   apiKey,
		Endpoint: DefaultFirebaseEndpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

type credentials struct {
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	IDToken           string `json:"idToken,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResp struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

type errorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (Account, error) {
	return f.account(ctx, "accounts:signInWithPassword", credentials{Email: email, Password: password, ReturnSecureToken: true})
}

func (f *Firebase) SignUp(ctx context.Context, email, password string) (Account, error) {
	return f.account(ctx, "accounts:signUp", credentials{Email: email, Password: password, ReturnSecureToken: true})
}

// SignOut is local only; Identity Toolkit has no server-side sign-out for
// ID tokens, they simply expire.
func (f *Firebase) SignOut(context.Context, Account) error { return nil }

func (f *Firebase) UpdatePassword(ctx context.Context, acct Account, newPassword string) error {
	if acct.IDToken == "" {
		return &ProviderError{Code: "CREDENTIAL_TOO_OLD_LOGIN_AGAIN"}
	}
	var out accountResp
	return f.call(ctx, "accounts:update", credentials{IDToken: acct.IDToken, Password: newPassword, ReturnSecureToken: true}, &out)
}

func (f *Firebase) account(ctx context.Context, method string, in credentials) (Account, error) {
	var out accountResp
	if err := f.call(ctx, method, in, &out); err != nil {
		return Account{}, err
	}
	return Account{UID: out.LocalID, Email: out.Email, DisplayName: out.DisplayName, IDToken: out.IDToken}, nil
}

func (f *Firebase) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/%s?key=%s", strings.TrimRight(f.Endpoint, "/"), method, url.QueryEscape(f.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var er errorResp
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error.Message == "" {
			return fmt.Errorf("identity %s: status %d", method, resp.StatusCode)
		}
		return parseProviderError(er.Error.Message)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity %s: decode: %w", method, err)
	}
	return nil
}

// parseProviderError splits "WEAK_PASSWORD : Password should be ..." into
// code and detail.
func parseProviderError(msg string) *ProviderError {
	code, detail, _ := strings.Cut(msg, " : ")
	return &ProviderError{Code: strings.TrimSpace(code), Message: strings.TrimSpace(detail)}
}
