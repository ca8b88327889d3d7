package packer

import (
	"errors"
	"strings"
)

// SymlinkPolicy decides what happens to symbolic links found below the root.
type SymlinkPolicy string

const (
	SymlinkSkip   SymlinkPolicy = "skip"
	SymlinkFollow SymlinkPolicy = "follow"
	SymlinkError  SymlinkPolicy = "error"
)

var ListSymlinkPolicies = []string{string(SymlinkSkip), string(SymlinkFollow), string(SymlinkError)}

// String is used both by fmt.Print and by Cobra in help text
func (e *SymlinkPolicy) String() string {
	return string(*e)
}

// Set must have pointer receiver so it doesn't change the value of a copy
func (e *SymlinkPolicy) Set(v string) error {
	p := SymlinkPolicy(v)
	if err := p.Validate(); err != nil {
		return err
	}
	*e = p
	return nil
}

// Type is only used in help text
func (e *SymlinkPolicy) Type() string {
	return "symlinkPolicy"
}

func (e SymlinkPolicy) Validate() error {
	switch e {
	case SymlinkSkip, SymlinkFollow, SymlinkError:
		return nil
	default:
		return errors.New(`symlink policy must be one of ` + strings.Join(ListSymlinkPolicies, ","))
	}
}
