package main

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

const (
	tokenEndpoint   = "https://api.line.me/oauth2/v2.1/token"
	tokenResultFile = "token_result.json"

	// assertionTTL is the JWT validity window; tokenTTL is the requested
	// access token lifetime (LINE maximum: 30 days).
	assertionTTL = 30 * time.Minute
	tokenTTL     = 30 * 24 * time.Hour
)

var (
	issueKid       string
	issueChannelID string
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Sign a JWT and exchange it for a channel access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(privateKeyFile)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s not found, run `linetoken generate-keys` first", privateKeyFile)
			}
			return err
		}
		key, err := parsePrivateJWK(data)
		if err != nil {
			return err
		}

		assertion, err := buildAssertion(key, issueKid, issueChannelID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to sign JWT: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		result, err := exchangeToken(ctx, tokenEndpoint, assertion)
		if err != nil {
			return err
		}

		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(tokenResultFile, raw, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", tokenResultFile, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Channel access token issued.")
		fmt.Fprintf(out, "  key id:     %s\n", result.KeyID)
		fmt.Fprintf(out, "  expires in: %d seconds (%d days)\n", result.ExpiresIn, result.ExpiresIn/86400)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Add this to your .env:")
		fmt.Fprintf(out, "  LINE_CHANNEL_ACCESS_TOKEN=%s\n", result.AccessToken)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Full response saved to %s\n", tokenResultFile)
		return nil
	},
}

func init() {
	issueTokenCmd.Flags().StringVar(&issueKid, "kid", "", "kid returned by the LINE Developers Console")
	issueTokenCmd.Flags().StringVar(&issueChannelID, "channel-id", "", "channel ID")
	_ = issueTokenCmd.MarkFlagRequired("kid")
	_ = issueTokenCmd.MarkFlagRequired("channel-id")
	rootCmd.AddCommand(issueTokenCmd)
}

// buildAssertion signs the client assertion JWT. iss and sub both carry the
// channel ID; token_exp is the requested access token lifetime in seconds.
func buildAssertion(key *rsa.PrivateKey, kid, channelID string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":       channelID,
		"sub":       channelID,
		"aud":       "https://api.line.me/",
		"exp":       now.Add(assertionTTL).Unix(),
		"token_exp": int64(tokenTTL.Seconds()),
	})
	token.Header["kid"] = kid
	return token.SignedString(key)
}

// tokenResult is the token endpoint's success response.
type tokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	KeyID       string `json:"key_id"`
}

func exchangeToken(ctx context.Context, endpoint, assertion string) (*tokenResult, error) {
	form := url.Values{
		"grant_type":            {"client_credentials"},
		"client_assertion_type": {"urn:ietf:params:oauth:client-assertion-type:jwt-bearer"},
		"client_assertion":      {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d: %s (check the kid, channel ID and that the public key is registered)", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result tokenResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &result, nil
}
