package licensekit

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensekit/licensekit-go/legacy"
	"github.com/licensekit/licensekit-go/paseto"
)

// tamperBody flips one bit of the decoded token body at index i.
func tamperBody(t *testing.T, token string, i int) string {
	t.Helper()
	parts := strings.Split(token, ".")
	body, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	body[i] ^= 0x01
	parts[2] = base64.RawURLEncoding.EncodeToString(body)
	return strings.Join(parts, ".")
}

func TestVerify_TwoPhase(t *testing.T) {
	pair := newEd25519Pair(t)
	token := issue(t, pair.Private, validClaims())

	raw, err := ParseUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, paseto.PurposePublic, raw.Purpose())
	assert.Equal(t, token, raw.String())

	lic, err := Verify(raw, pair.Public)
	require.NoError(t, err)

	assert.Equal(t, "L1", lic.ID())
	assert.Equal(t, "com.example.app", lic.AppID())
	assert.Equal(t, TypeStandard, lic.Type())
	assert.True(t, lic.ExpiresAt().Equal(fixedNow.Add(365*24*time.Hour)))
	assert.True(t, lic.IssuedAt().Equal(fixedNow.Add(-24*time.Hour)))
	assert.Equal(t, token, lic.Token())
	assert.False(t, lic.Legacy())
	assert.False(t, lic.Trial())
	assert.Equal(t, "ACME", lic.Metadata()["customer"])
	assert.True(t, lic.HasFeature("export"))
	assert.Contains(t, lic.String(), "id=L1")
}

func TestParseUnverified_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMalformedToken},
		{"two parts", "v4.public", ErrMalformedToken},
		{"bad base64", "v4.public.!!!", ErrMalformedToken},
		{"old version", "v2.public.AAAA", ErrHeaderMismatch},
		{"bad purpose", "v4.secret.AAAA", ErrHeaderMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUnverified(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerify_Failures(t *testing.T) {
	pair := newEd25519Pair(t)
	other := newEd25519Pair(t)
	token := issue(t, pair.Private, validClaims())

	t.Run("wrong key", func(t *testing.T) {
		_, err := VerifyToken(token, other.Public)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("altered payload", func(t *testing.T) {
		_, err := VerifyToken(tamperBody(t, token, 5), pair.Public)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("local token", func(t *testing.T) {
		local := strings.Replace(token, "v4.public.", "v4.local.", 1)
		_, err := VerifyToken(local, pair.Public)
		assert.ErrorIs(t, err, ErrHeaderMismatch)
	})

	t.Run("nil raw", func(t *testing.T) {
		_, err := Verify(nil, pair.Public)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("legacy key", func(t *testing.T) {
		ec := newECDSAPair(t)
		_, err := VerifyToken(token, ec.Public)
		assert.ErrorIs(t, err, ErrUnsupportedKey)
	})
}

func TestVerify_ClaimsShape(t *testing.T) {
	pair := newEd25519Pair(t)

	base := func() map[string]any {
		return map[string]any{
			"sub":      "L1",
			"app_id":   "com.example.app",
			"exp":      "2999-01-01T00:00:00Z",
			"type":     "standard",
			"features": map[string]any{},
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing exp", func(m map[string]any) { delete(m, "exp") }, "payload"},
		{"missing sub", func(m map[string]any) { delete(m, "sub") }, "payload"},
		{"exp not a date", func(m map[string]any) { m["exp"] = "tomorrow" }, "exp"},
		{"features not an object", func(m map[string]any) { m["features"] = []any{"a"} }, "features"},
		{"trial not a bool", func(m map[string]any) { m["trial"] = "yes" }, "trial"},
		{"bad app id", func(m map[string]any) { m["app_id"] = "x" }, "app_id"},
		{"bad type", func(m map[string]any) { m["type"] = "no spaces allowed" }, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			token, err := paseto.SignClaims(pair.Private, m)
			require.NoError(t, err)

			_, err = VerifyToken(token, pair.Public)
			require.ErrorIs(t, err, ErrInvalidClaims)
			var cerr *ClaimsError
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, cerr.Errors, tt.field)
		})
	}

	t.Run("not json", func(t *testing.T) {
		token, err := paseto.Sign(pair.Private, []byte("not json"))
		require.NoError(t, err)
		_, err = VerifyToken(token, pair.Public)
		var cerr *ClaimsError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, cerr.Errors, "payload")
	})

	t.Run("array payload", func(t *testing.T) {
		token, err := paseto.Sign(pair.Private, []byte(`[1,2]`))
		require.NoError(t, err)
		_, err = VerifyToken(token, pair.Public)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("type is case folded", func(t *testing.T) {
		m := base()
		m["type"] = "PRO"
		token, err := paseto.SignClaims(pair.Private, m)
		require.NoError(t, err)

		lic, err := VerifyToken(token, pair.Public)
		require.NoError(t, err)
		assert.Equal(t, TypePro, lic.Type())
	})

	t.Run("null metadata and features", func(t *testing.T) {
		m := base()
		m["features"] = nil
		m["metadata"] = nil
		token, err := paseto.SignClaims(pair.Private, m)
		require.NoError(t, err)

		lic, err := VerifyToken(token, pair.Public)
		require.NoError(t, err)
		assert.Empty(t, lic.Features())
		assert.Nil(t, lic.Metadata())
	})
}

func TestVerifyLegacy(t *testing.T) {
	ec := newECDSAPair(t)
	payload, err := json.Marshal(validClaims())
	require.NoError(t, err)

	env, err := legacy.SignEnvelope(ec.Private, payload, nil)
	require.NoError(t, err)

	lic, err := VerifyLegacy(env, ec.Public)
	require.NoError(t, err)
	assert.True(t, lic.Legacy())
	assert.Equal(t, "L1", lic.ID())
	assert.Equal(t, string(env), lic.Token())

	var signed legacy.SignedEnvelope
	require.NoError(t, json.Unmarshal(env, &signed))
	signed.Payload = strings.Replace(signed.Payload, "L1", "L2", 1)
	forged, err := json.Marshal(&signed)
	require.NoError(t, err)

	_, err = VerifyLegacy(forged, ec.Public)
	assert.ErrorIs(t, err, legacy.ErrSignatureInvalid)
}

func TestLicense_Immutable(t *testing.T) {
	pair := newEd25519Pair(t)
	c := validClaims()
	c.Features["limits"] = map[string]any{"seats": 5, "regions": []any{"eu", "us"}}
	c.Metadata["contacts"] = []any{map[string]any{"email": "ops@example.com"}}
	lic, err := VerifyToken(issue(t, pair.Private, c), pair.Public)
	require.NoError(t, err)

	features := lic.Features()
	features["seats"] = 1000
	limits := features["limits"].(map[string]any)
	limits["seats"] = 9999
	limits["regions"].([]any)[0] = "cn"
	lic.Metadata()["contacts"].([]any)[0].(map[string]any)["email"] = "evil@example.com"
	claims := lic.Claims()
	claims.Features["export"] = false
	claims.Features["limits"].(map[string]any)["seats"] = 1
	claims.AppID = "changed"
	amended := lic.Amend(func(c *Claims) {
		c.Features["limits"].(map[string]any)["regions"] = nil
	})

	assert.Equal(t, float64(5), lic.Features()["seats"])
	assert.Equal(t, map[string]any{"seats": float64(5), "regions": []any{"eu", "us"}}, lic.Features()["limits"])
	assert.Equal(t, []any{map[string]any{"email": "ops@example.com"}}, lic.Metadata()["contacts"])
	assert.True(t, lic.HasFeature("export"))
	assert.Equal(t, "com.example.app", lic.AppID())
	assert.Nil(t, amended.Features["limits"].(map[string]any)["regions"])
}

func TestLicense_Amend(t *testing.T) {
	pair := newEd25519Pair(t)
	iss, err := NewIssuer(pair.Private, WithClock(fixedClock))
	require.NoError(t, err)

	lic, err := iss.IssueLicense(validClaims())
	require.NoError(t, err)

	renewed := lic.Amend(func(c *Claims) {
		c.ExpiresAt = c.ExpiresAt.AddDate(1, 0, 0)
		c.Features["seats"] = 10
	})
	assert.Equal(t, float64(5), lic.Features()["seats"])
	assert.Equal(t, "L1", renewed.Subject)

	next, err := iss.IssueLicense(renewed)
	require.NoError(t, err)
	assert.Equal(t, float64(10), next.Features()["seats"])
	assert.True(t, next.ExpiresAt().After(lic.ExpiresAt()))
	assert.Equal(t, lic.ID(), next.ID())

	same := lic.Amend(nil)
	assert.Equal(t, lic.AppID(), same.AppID)
}

func TestLicense_ExpiredAt(t *testing.T) {
	pair := newEd25519Pair(t)
	lic, err := VerifyToken(issue(t, pair.Private, validClaims()), pair.Public)
	require.NoError(t, err)

	exp := lic.ExpiresAt()
	assert.False(t, lic.ExpiredAt(exp.Add(-time.Second)))
	assert.True(t, lic.ExpiredAt(exp))
	assert.True(t, lic.ExpiredAt(exp.Add(time.Second)))
}
