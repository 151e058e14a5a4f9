package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"
)

const (
	privateKeyFile = "private_key.json"
	publicKeyFile  = "public_key.json"
)

var generateKeysCmd = &cobra.Command{
	Use:   "generate-keys",
	Short: "Generate an RSA key pair (private + public JWK)",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return fmt.Errorf("failed to generate RSA key: %w", err)
		}

		private, err := json.MarshalIndent(exportPrivateJWK(key), "", "  ")
		if err != nil {
			return err
		}
		public, err := json.MarshalIndent(exportPublicJWK(&key.PublicKey), "", "  ")
		if err != nil {
			return err
		}

		if err := os.WriteFile(privateKeyFile, private, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", privateKeyFile, err)
		}
		if err := os.WriteFile(publicKeyFile, public, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", publicKeyFile, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Key pair generated.")
		fmt.Fprintf(out, "  private key: %s (keep this secret)\n", privateKeyFile)
		fmt.Fprintf(out, "  public key:  %s\n", publicKeyFile)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Register the public key in the LINE Developers Console:")
		fmt.Fprintln(out, "  1. Open https://developers.line.biz/console/ and select your channel")
		fmt.Fprintln(out, "  2. Basic settings -> Assertion Signing Key -> Register a public key")
		fmt.Fprintln(out, "  3. Paste the following JSON:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(public))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  4. Copy the kid the console returns, then run:")
		fmt.Fprintln(out, "     linetoken issue-token --kid YOUR_KID --channel-id YOUR_CHANNEL_ID")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateKeysCmd)
}

// jwk is the JSON Web Key shape the LINE console accepts. Fields are
// base64url without padding, per RFC 7518.
type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
	D   string `json:"d,omitempty"`
	P   string `json:"p,omitempty"`
	Q   string `json:"q,omitempty"`
	DP  string `json:"dp,omitempty"`
	DQ  string `json:"dq,omitempty"`
	QI  string `json:"qi,omitempty"`
}

func exportPublicJWK(pub *rsa.PublicKey) jwk {
	return jwk{
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   b64Int(pub.N),
		E:   b64Int(big.NewInt(int64(pub.E))),
	}
}

func exportPrivateJWK(key *rsa.PrivateKey) jwk {
	key.Precompute()
	out := exportPublicJWK(&key.PublicKey)
	out.D = b64Int(key.D)
	out.P = b64Int(key.Primes[0])
	out.Q = b64Int(key.Primes[1])
	out.DP = b64Int(key.Precomputed.Dp)
	out.DQ = b64Int(key.Precomputed.Dq)
	out.QI = b64Int(key.Precomputed.Qinv)
	return out
}

// parsePrivateJWK rebuilds the RSA private key from its JWK form.
func parsePrivateJWK(data []byte) (*rsa.PrivateKey, error) {
	var k jwk
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("invalid key file: %w", err)
	}
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
	if k.D == "" || k.P == "" || k.Q == "" {
		return nil, fmt.Errorf("key file does not contain a private key")
	}

	n, err := b64ToInt(k.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	e, err := b64ToInt(k.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}
	d, err := b64ToInt(k.D)
	if err != nil {
		return nil, fmt.Errorf("invalid private exponent: %w", err)
	}
	p, err := b64ToInt(k.P)
	if err != nil {
		return nil, fmt.Errorf("invalid prime: %w", err)
	}
	q, err := b64ToInt(k.Q)
	if err != nil {
		return nil, fmt.Errorf("invalid prime: %w", err)
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("key failed validation: %w", err)
	}
	key.Precompute()
	return key, nil
}

func b64Int(v *big.Int) string {
	return base64.RawURLEncoding.EncodeToString(v.Bytes())
}

func b64ToInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
