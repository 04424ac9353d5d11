// Package nut09 contains structs as defined in [NUT-09]
//
// [NUT-09]: https://github.com/cashubtc/nuts/blob/main/09.md
package nut09

import (
	"encoding/json"
	"errors"
	"strings"
)

// MintInfo is the response of GET /info. Every field is optional.
type MintInfo struct {
	Name            string          `json:"name,omitempty"`
	Pubkey          string          `json:"pubkey,omitempty"`
	Version         string          `json:"version,omitempty"`
	Description     string          `json:"description,omitempty"`
	LongDescription string          `json:"description_long,omitempty"`
	Contact         []ContactInfo   `json:"contact,omitempty"`
	Nuts            []string        `json:"nuts,omitempty"`
	Motd            string          `json:"motd,omitempty"`
	Parameter       json.RawMessage `json:"parameter,omitempty"`
}

// VersionInfo splits a version like "Nutshell/0.11.0" into name and version.
func (mi MintInfo) VersionInfo() (string, string) {
	name, version, found := strings.Cut(mi.Version, "/")
	if !found {
		return "", mi.Version
	}
	return name, version
}

// Supports reports whether the mint lists the nut, e.g "NUT-07".
func (mi MintInfo) Supports(nut string) bool {
	for _, n := range mi.Nuts {
		if strings.EqualFold(n, nut) {
			return true
		}
	}
	return false
}

type ContactInfo struct {
	Method string `json:"method"`
	Info   string `json:"info"`
}

func (ci ContactInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{ci.Method, ci.Info})
}

// custom unmarshal to accept the ["method", "info"] pairs sent by
// legacy mints as well as {"method": "", "info": ""} objects
func (ci *ContactInfo) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return errors.New("contact should be a [method, info] pair")
		}
		ci.Method, ci.Info = pair[0], pair[1]
		return nil
	}

	var contact struct {
		Method string `json:"method"`
		Info   string `json:"info"`
	}
	if err := json.Unmarshal(data, &contact); err != nil {
		return err
	}
	ci.Method, ci.Info = contact.Method, contact.Info
	return nil
}
