package jwttoken

import (
	"featstack/internal/platform/middleware"
)

// CodecAdapter satisfies the middleware's token validator interface.
type CodecAdapter struct {
	codec *Codec
}

func NewCodecAdapter(codec *Codec) *CodecAdapter {
	return &CodecAdapter{codec: codec}
}

func (a *CodecAdapter) ValidateAccessToken(tokenString string) (*middleware.AuthClaims, error) {
	claims, err := a.codec.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.AuthClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
