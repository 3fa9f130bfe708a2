package rpc

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// UserToStruct encodes a user for the wire.
func UserToStruct(u models.User) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"username": structpb.NewStringValue(u.Username),
		"stamps":   structpb.NewNumberValue(float64(u.Stamps)),
		"language": structpb.NewStringValue(string(u.Language)),
	}}
}

// UserFromStruct decodes a user. username and an integral stamps are
// required; language may be missing.
func UserFromStruct(s *structpb.Struct) (models.User, error) {
	if s == nil {
		return models.User{}, fmt.Errorf("empty user: %w", common.ErrValidation)
	}
	f := s.GetFields()

	name, ok := f["username"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return models.User{}, fmt.Errorf("username must be a string: %w", common.ErrValidation)
	}

	num, ok := f["stamps"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return models.User{}, fmt.Errorf("stamps must be a number: %w", common.ErrValidation)
	}
	if num.NumberValue != math.Trunc(num.NumberValue) || math.IsInf(num.NumberValue, 0) {
		return models.User{}, fmt.Errorf("stamps must be an integer: %w", common.ErrValidation)
	}

	u := models.User{Username: name.StringValue, Stamps: int(num.NumberValue)}
	if lang, ok := f["language"].GetKind().(*structpb.Value_StringValue); ok {
		u.Language = models.Language(lang.StringValue)
	}
	return u, nil
}

func UsersToList(users []models.User) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(users))}
	for _, u := range users {
		out.Values = append(out.Values, structpb.NewStructValue(UserToStruct(u)))
	}
	return out
}

func UsersFromList(l *structpb.ListValue) ([]models.User, error) {
	out := make([]models.User, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		u, err := UserFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, u)
	}
	return out, nil
}
