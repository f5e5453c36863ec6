package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Platform is the social channel a post targets.
type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformStrava   Platform = "strava"
	PlatformInternal Platform = "internal"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformLinkedIn, PlatformStrava, PlatformInternal:
		return true
	}
	return false
}

// Tone is the requested voice of a post.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneMotivational Tone = "motivational"
	ToneCasual       Tone = "casual"
)

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneMotivational, ToneCasual:
		return true
	}
	return false
}

// PostRequest is the high-level intention for a single run.
type PostRequest struct {
	TargetPlatform   Platform `json:"target_platform" yaml:"targetPlatform"`
	Tone             Tone     `json:"tone" yaml:"tone"`
	Objective        string   `json:"objective" yaml:"objective"`
	Audience         string   `json:"audience" yaml:"audience"`
	CallToActionHint string   `json:"call_to_action_hint" yaml:"callToActionHint"`
}

// Validate checks enum membership and that every text field is non-blank.
func (r PostRequest) Validate() error {
	var problems []string
	if !r.TargetPlatform.Valid() {
		problems = append(problems, fmt.Sprintf("unknown target_platform %q", r.TargetPlatform))
	}
	if !r.Tone.Valid() {
		problems = append(problems, fmt.Sprintf("unknown tone %q", r.Tone))
	}
	for name, value := range map[string]string{
		"objective":           r.Objective,
		"audience":            r.Audience,
		"call_to_action_hint": r.CallToActionHint,
	} {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, name+" is empty")
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &Error{Kind: KindValidation, Op: "validate request", Msg: strings.Join(problems, "; ")}
}
