package gate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mayaportal/pkg/platform/sentinel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-signing-secret"

type CodecSuite struct {
	suite.Suite
	codec *Codec
}

func (s *CodecSuite) SetupTest() {
	s.codec = NewCodec(testSecret, 7*24*time.Hour)
}

func (s *CodecSuite) TestIssueDecodeRoundTrip() {
	now := time.Now().Truncate(time.Second)

	token, err := s.codec.Issue(now)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), token)

	claims, err := s.codec.Decode(token)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), TokenSubject, claims.Subject)
	assert.Equal(s.T(), TokenScope, claims.Scope)
	assert.NotEmpty(s.T(), claims.ID)
	assert.True(s.T(), claims.IssuedAt.Time.Equal(now))
	assert.True(s.T(), claims.ExpiresAt.Time.Equal(now.Add(s.codec.TTL())))
}

func (s *CodecSuite) TestDecodeExpiredToken() {
	codec := NewCodec(testSecret, time.Hour)

	token, err := codec.Issue(time.Now().Add(-2 * time.Hour))
	require.NoError(s.T(), err)

	_, err = codec.Decode(token)
	assert.ErrorIs(s.T(), err, sentinel.ErrExpired)
}

func (s *CodecSuite) TestSignatureCheckedBeforeExpiry() {
	// A token that is both expired and signed with a foreign key must fail
	// the signature check, not report expiry.
	foreign := NewCodec("some-other-secret", time.Hour)
	token, err := foreign.Issue(time.Now().Add(-2 * time.Hour))
	require.NoError(s.T(), err)

	_, err = s.codec.Decode(token)
	assert.ErrorIs(s.T(), err, sentinel.ErrBadSignature)
	assert.NotErrorIs(s.T(), err, sentinel.ErrExpired)
}

func (s *CodecSuite) TestDecodeTamperedPayload() {
	token, err := s.codec.Issue(time.Now())
	require.NoError(s.T(), err)

	parts := strings.Split(token, ".")
	require.Len(s.T(), parts, 3)

	// Flip one byte of the payload segment.
	payload := []byte(parts[1])
	if payload[3] == 'A' {
		payload[3] = 'B'
	} else {
		payload[3] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = s.codec.Decode(tampered)
	require.Error(s.T(), err)
	// The failure is a parse or signature rejection; it is never treated as
	// a (tampered) expiry claim.
	assert.True(s.T(),
		errors.Is(err, sentinel.ErrBadSignature) || errors.Is(err, sentinel.ErrMalformed))
	assert.NotErrorIs(s.T(), err, sentinel.ErrExpired)
}

func (s *CodecSuite) TestDecodeGarbage() {
	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := s.codec.Decode(token)
		assert.ErrorIs(s.T(), err, sentinel.ErrMalformed, "token %q", token)
	}
}

func (s *CodecSuite) TestDecodeRejectsForeignAlgorithm() {
	claims := Claims{
		Scope: TokenScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   TokenSubject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	require.NoError(s.T(), err)
	_, err = s.codec.Decode(hs384)
	assert.Error(s.T(), err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(s.T(), err)
	_, err = s.codec.Decode(unsigned)
	assert.Error(s.T(), err)
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}
