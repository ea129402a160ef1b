package paseto

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/licensekit/licensekit-go/keys"
)

func newSigningPair(t testing.TB) *keys.KeyPair {
	t.Helper()
	pair, err := keys.DefaultGenerator().KeyPair(keys.KindEd25519, keys.Params{})
	if err != nil {
		t.Fatal(err)
	}
	return pair
}

func newLocalKey(t testing.TB) *keys.SymmetricKey {
	t.Helper()
	key, err := keys.DefaultGenerator().Symmetric()
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestSignVerify_RoundTrip(t *testing.T) {
	pair := newSigningPair(t)

	tests := []struct {
		name     string
		message  []byte
		footer   []byte
		implicit []byte
	}{
		{"plain", []byte(`{"sub":"L1"}`), nil, nil},
		{"footer", []byte(`{"sub":"L1"}`), []byte(`{"kid":"k4.pid.x"}`), nil},
		{"implicit", []byte(`{"sub":"L1"}`), nil, []byte("device-hash")},
		{"footer and implicit", []byte(`{"sub":"L1"}`), []byte("f"), []byte("i")},
		{"empty message", []byte{}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.footer != nil {
				opts = append(opts, WithFooter(tt.footer))
			}
			if tt.implicit != nil {
				opts = append(opts, WithImplicitAssertion(tt.implicit))
			}

			token, err := Sign(pair.Private, tt.message, opts...)
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if !strings.HasPrefix(token, "v4.public.") {
				t.Errorf("token = %q, want v4.public. prefix", token)
			}

			msg, err := Verify(token, pair.Public, WithImplicitAssertion(tt.implicit))
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if !bytes.Equal(msg.Payload, tt.message) {
				t.Errorf("Payload = %q, want %q", msg.Payload, tt.message)
			}
			if !bytes.Equal(msg.Footer, tt.footer) {
				t.Errorf("Footer = %q, want %q", msg.Footer, tt.footer)
			}
		})
	}
}

func TestVerify_Failures(t *testing.T) {
	pair := newSigningPair(t)
	other := newSigningPair(t)
	message := []byte(`{"sub":"L1","type":"standard"}`)

	token, err := Sign(pair.Private, message, WithFooter([]byte("footer")), WithImplicitAssertion([]byte("app")))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := Parse(token)
	if err != nil {
		t.Fatal(err)
	}

	alteredPayload := append([]byte(nil), raw.Body...)
	alteredPayload[5] ^= 0x01
	alteredSig := append([]byte(nil), raw.Body...)
	alteredSig[len(alteredSig)-1] ^= 0x01

	tests := []struct {
		name    string
		token   string
		key     *keys.PublicKey
		opts    []Option
		wantErr error
	}{
		{"wrong key", token, other.Public, []Option{WithImplicitAssertion([]byte("app"))}, ErrSignatureInvalid},
		{"missing assertion", token, pair.Public, nil, ErrSignatureInvalid},
		{"wrong assertion", token, pair.Public, []Option{WithImplicitAssertion([]byte("other"))}, ErrSignatureInvalid},
		{"altered payload", assemble(PurposePublic, alteredPayload, raw.Footer), pair.Public, []Option{WithImplicitAssertion([]byte("app"))}, ErrSignatureInvalid},
		{"altered signature", assemble(PurposePublic, alteredSig, raw.Footer), pair.Public, []Option{WithImplicitAssertion([]byte("app"))}, ErrSignatureInvalid},
		{"altered footer", assemble(PurposePublic, raw.Body, []byte("footex")), pair.Public, []Option{WithImplicitAssertion([]byte("app"))}, ErrSignatureInvalid},
		{"stripped footer", assemble(PurposePublic, raw.Body, nil), pair.Public, []Option{WithImplicitAssertion([]byte("app"))}, ErrSignatureInvalid},
		{"expected footer differs", token, pair.Public, []Option{WithFooter([]byte("x")), WithImplicitAssertion([]byte("app"))}, ErrFooterMismatch},
		{"local header", strings.Replace(token, "v4.public.", "v4.local.", 1), pair.Public, nil, ErrHeaderMismatch},
		{"short body", assemble(PurposePublic, make([]byte, 10), nil), pair.Public, nil, ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Verify(tt.token, tt.key, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
			if msg != nil {
				t.Error("Verify() returned a message on failure")
			}
		})
	}
}

func TestSign_KeyKind(t *testing.T) {
	pair, err := keys.DefaultGenerator().KeyPair(keys.KindECDSA, keys.Params{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Sign(pair.Private, []byte("m")); !errors.Is(err, keys.ErrUnsupportedKey) {
		t.Errorf("Sign(ecdsa) error = %v, want ErrUnsupportedKey", err)
	}

	signing := newSigningPair(t)
	token, err := Sign(signing.Private, []byte("m"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(token, pair.Public); !errors.Is(err, keys.ErrUnsupportedKey) {
		t.Errorf("Verify(ecdsa) error = %v, want ErrUnsupportedKey", err)
	}

	signing.Private.Dispose()
	if _, err := Sign(signing.Private, []byte("m")); !errors.Is(err, keys.ErrUseAfterDispose) {
		t.Errorf("Sign(disposed) error = %v, want ErrUseAfterDispose", err)
	}
}

func TestSignClaims(t *testing.T) {
	pair := newSigningPair(t)
	claims := map[string]any{"sub": "L1", "app_id": "com.example.app", "features": map[string]any{}}

	token, err := SignClaims(pair.Private, claims)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Verify(token, pair.Public)
	if err != nil {
		t.Fatal(err)
	}

	// encoding/json sorts map keys.
	want := `{"app_id":"com.example.app","features":{},"sub":"L1"}`
	if string(msg.Payload) != want {
		t.Errorf("Payload = %s, want %s", msg.Payload, want)
	}

	m, err := msg.Map()
	if err != nil {
		t.Fatal(err)
	}
	if m["sub"] != "L1" {
		t.Errorf("Map()[sub] = %v, want L1", m["sub"])
	}

	var decoded struct {
		Sub string `json:"sub"`
	}
	if err := msg.Claims(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Sub != "L1" {
		t.Errorf("Claims().Sub = %q, want L1", decoded.Sub)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := newLocalKey(t)

	tests := []struct {
		name     string
		message  []byte
		footer   []byte
		implicit []byte
	}{
		{"plain", []byte(`{"msg":"hi"}`), nil, nil},
		{"footer", []byte(`{"msg":"hi"}`), []byte(`{"wpk":"k4.seal.x"}`), nil},
		{"implicit", []byte(`{"msg":"hi"}`), nil, []byte("ctx")},
		{"empty", nil, nil, nil},
		{"large", bytes.Repeat([]byte("x"), 1<<16), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.footer != nil {
				opts = append(opts, WithFooter(tt.footer))
			}
			opts = append(opts, WithImplicitAssertion(tt.implicit))

			token, err := Encrypt(key, tt.message, opts...)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !strings.HasPrefix(token, "v4.local.") {
				t.Errorf("token = %q, want v4.local. prefix", token)
			}
			if len(tt.message) > 8 && strings.Contains(token, string(tt.message[:8])) {
				t.Error("token contains plaintext")
			}

			msg, err := Decrypt(token, key, WithImplicitAssertion(tt.implicit))
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(msg.Payload, tt.message) {
				t.Errorf("Payload mismatch: got %d bytes, want %d", len(msg.Payload), len(tt.message))
			}
			if !bytes.Equal(msg.Footer, tt.footer) {
				t.Errorf("Footer = %q, want %q", msg.Footer, tt.footer)
			}
		})
	}
}

func TestDecrypt_AnyByteChangeFails(t *testing.T) {
	key := newLocalKey(t)
	footer := []byte("kid")

	token, err := Encrypt(key, []byte(`{"msg":"hi"}`), WithFooter(footer))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := Parse(token)
	if err != nil {
		t.Fatal(err)
	}

	for i := range raw.Body {
		body := append([]byte(nil), raw.Body...)
		body[i] ^= 0x80
		_, err := Decrypt(assemble(PurposeLocal, body, footer), key)
		if !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("byte %d flipped: Decrypt() error = %v, want ErrDecryptionFailed", i, err)
		}
	}

	for i := range footer {
		f := append([]byte(nil), footer...)
		f[i] ^= 0x01
		_, err := Decrypt(assemble(PurposeLocal, raw.Body, f), key)
		if !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("footer byte %d flipped: Decrypt() error = %v, want ErrDecryptionFailed", i, err)
		}
	}
}

func TestDecrypt_Failures(t *testing.T) {
	key := newLocalKey(t)
	other := newLocalKey(t)

	token, err := Encrypt(key, []byte("secret"), WithImplicitAssertion([]byte("a")))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		token   string
		key     *keys.SymmetricKey
		opts    []Option
		wantErr error
	}{
		{"wrong key", token, other, []Option{WithImplicitAssertion([]byte("a"))}, ErrDecryptionFailed},
		{"wrong assertion", token, key, []Option{WithImplicitAssertion([]byte("b"))}, ErrDecryptionFailed},
		{"public header", strings.Replace(token, "v4.local.", "v4.public.", 1), key, nil, ErrHeaderMismatch},
		{"v3 header", strings.Replace(token, "v4.", "v3.", 1), key, nil, ErrHeaderMismatch},
		{"short body", assemble(PurposeLocal, make([]byte, 63), nil), key, nil, ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decrypt(tt.token, tt.key, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.wantErr)
			}
			if msg != nil {
				t.Error("Decrypt() returned plaintext on failure")
			}
		})
	}
}

func TestEncrypt_NonceHandling(t *testing.T) {
	key := newLocalKey(t)
	message := []byte("same message")

	a, err := Encrypt(key, message)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt(key, message)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions produced the same token")
	}

	nonce := bytes.Repeat([]byte{0x11}, 32)
	c, err := Encrypt(key, message, WithRandom(bytes.NewReader(nonce)))
	if err != nil {
		t.Fatal(err)
	}
	d, err := Encrypt(key, message, WithRandom(bytes.NewReader(nonce)))
	if err != nil {
		t.Fatal(err)
	}
	if c != d {
		t.Error("identical nonces produced different tokens")
	}

	if _, err := Encrypt(key, message, WithRandom(bytes.NewReader([]byte{1}))); err == nil {
		t.Error("Encrypt() with short random source succeeded")
	}
}

func TestEncrypt_KeyKind(t *testing.T) {
	var nilKey *keys.SymmetricKey
	if _, err := Encrypt(nilKey, []byte("m")); !errors.Is(err, keys.ErrNilKey) {
		t.Errorf("Encrypt(nil) error = %v, want ErrNilKey", err)
	}

	key := newLocalKey(t)
	key.Dispose()
	if _, err := Encrypt(key, []byte("m")); !errors.Is(err, keys.ErrUseAfterDispose) {
		t.Errorf("Encrypt(disposed) error = %v, want ErrUseAfterDispose", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
		purpose Purpose
		footer  string
	}{
		{"public", "v4.public.AAAA", nil, PurposePublic, ""},
		{"local with footer", "v4.local.AAAA.Zm9v", nil, PurposeLocal, "foo"},
		{"too few parts", "v4.public", ErrMalformedToken, "", ""},
		{"too many parts", "v4.public.AAAA.Zm9v.x", ErrMalformedToken, "", ""},
		{"empty footer", "v4.public.AAAA.", ErrMalformedToken, "", ""},
		{"bad base64", "v4.public.***", ErrMalformedToken, "", ""},
		{"padded base64", "v4.public.AA==", ErrMalformedToken, "", ""},
		{"bad footer", "v4.public.AAAA.!!", ErrMalformedToken, "", ""},
		{"version", "v2.public.AAAA", ErrHeaderMismatch, "", ""},
		{"purpose", "v4.secret.AAAA", ErrHeaderMismatch, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Parse(tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if raw.Purpose != tt.purpose {
				t.Errorf("Purpose = %q, want %q", raw.Purpose, tt.purpose)
			}
			if string(raw.Footer) != tt.footer {
				t.Errorf("Footer = %q, want %q", raw.Footer, tt.footer)
			}
		})
	}
}

func TestPeekFooter(t *testing.T) {
	pair := newSigningPair(t)
	token, err := Sign(pair.Private, []byte("m"), WithFooter([]byte(`{"kid":"1"}`)))
	if err != nil {
		t.Fatal(err)
	}

	footer, err := PeekFooter(token)
	if err != nil {
		t.Fatal(err)
	}
	if string(footer) != `{"kid":"1"}` {
		t.Errorf("PeekFooter() = %q", footer)
	}
}

func TestVerifyRaw_UsesParsedToken(t *testing.T) {
	pair := newSigningPair(t)
	token, err := Sign(pair.Private, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := Parse(token)
	if err != nil {
		t.Fatal(err)
	}

	msg, err := VerifyRaw(raw, pair.Public)
	if err != nil {
		t.Fatal(err)
	}
	if string(msg.Payload) != "payload" {
		t.Errorf("Payload = %q", msg.Payload)
	}

	if _, err := VerifyRaw(nil, pair.Public); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("VerifyRaw(nil) error = %v, want ErrMalformedToken", err)
	}
}

func BenchmarkSign(b *testing.B) {
	pair := newSigningPair(b)
	message := []byte(`{"sub":"L1","app_id":"com.example.app","exp":"2999-01-01T00:00:00Z"}`)
	for i := 0; i < b.N; i++ {
		if _, err := Sign(pair.Private, message); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecrypt(b *testing.B) {
	key := newLocalKey(b)
	token, err := Encrypt(key, bytes.Repeat([]byte("x"), 1024))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decrypt(token, key); err != nil {
			b.Fatal(err)
		}
	}
}

func Example_signVerify() {
	pair, err := keys.DefaultGenerator().KeyPair(keys.KindEd25519, keys.Params{})
	if err != nil {
		panic(err)
	}
	defer pair.Dispose()

	token, err := Sign(pair.Private, []byte(`{"sub":"L1"}`), WithFooter([]byte("kid-1")))
	if err != nil {
		panic(err)
	}

	msg, err := Verify(token, pair.Public)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(msg.Payload), string(msg.Footer))
	// Output: {"sub":"L1"} kid-1
}
