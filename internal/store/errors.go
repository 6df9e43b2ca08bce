package store

import "errors"

var (
	ErrNameRequired       = errors.New("name required")
	ErrNameTaken          = errors.New("character already exists")
	ErrCharacterNotFound  = errors.New("character not found")
	ErrInvalidHP          = errors.New("hp must be a non-negative number")
	ErrUnknownSettingsKey = errors.New("unknown settings key")
	ErrInvalidSettings    = errors.New("invalid settings body")
)
