// Package settings validates per-platform publish settings payloads.
// Each platform has its own settings variant; payloads carry an explicit
// type tag which must match the platform they are submitted for.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-socialhub/socialhub/internal/platform"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrTypeMismatch is returned when the payload's type tag names a
	// different platform than the one it was submitted for. Kept distinct
	// from schema errors so callers can report it separately.
	ErrTypeMismatch = errors.New("settings: payload type does not match platform")

	// ErrUnknownType is returned when the payload's type tag names no
	// known platform variant.
	ErrUnknownType = errors.New("settings: unknown payload type")

	// ErrSchema is returned when the payload fails structural validation
	// for its variant.
	ErrSchema = errors.New("settings: payload failed schema validation")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WechatSettings controls how an article is published to a WeChat
// official account.
type WechatSettings struct {
	Type               string `json:"type" validate:"required,eq=wechat"`
	Author             string `json:"author,omitempty" validate:"omitempty,max=64"`
	CoverImageURL      string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	NeedOpenComment    bool   `json:"need_open_comment,omitempty"`
	OnlyFansCanComment bool   `json:"only_fans_can_comment,omitempty"`
}

// WeiboSettings controls Weibo post options.
// Visibility defaults to "public" when omitted.
type WeiboSettings struct {
	Type       string `json:"type" validate:"required,eq=weibo"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public private friends"`
	Location   string `json:"location,omitempty" validate:"omitempty,max=128"`
}

// DouyinSettings controls Douyin post options.
type DouyinSettings struct {
	Type         string `json:"type" validate:"required,eq=douyin"`
	AllowComment bool   `json:"allow_comment,omitempty"`
	AllowDuet    bool   `json:"allow_duet,omitempty"`
	AllowStitch  bool   `json:"allow_stitch,omitempty"`
	PoiID        string `json:"poi_id,omitempty" validate:"omitempty,max=64"`
}

// XiaohongshuSettings controls Xiaohongshu note options.
type XiaohongshuSettings struct {
	Type         string   `json:"type" validate:"required,eq=xiaohongshu"`
	Topics       []string `json:"topics,omitempty" validate:"omitempty,max=10,dive,max=32"`
	Location     string   `json:"location,omitempty" validate:"omitempty,max=128"`
	AllowComment bool     `json:"allow_comment,omitempty"`
}

// typeTag is the minimal envelope decoded first to discriminate the union.
type typeTag struct {
	Type string `json:"type"`
}

// Validate parses raw as the settings variant for p and returns the typed
// payload. The returned value is one of *WechatSettings, *WeiboSettings,
// *DouyinSettings or *XiaohongshuSettings.
//
// A tag/platform mismatch is reported as ErrTypeMismatch even when the
// payload is schema-valid for the platform its tag names.
func Validate(p platform.Platform, raw json.RawMessage) (any, error) {
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if !platform.Platform(tag.Type).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag.Type)
	}

	if platform.Platform(tag.Type) != p {
		return nil, fmt.Errorf("%w: payload is %q, platform is %q",
			ErrTypeMismatch, tag.Type, p)
	}

	switch p {
	case platform.Wechat:
		return decode[WechatSettings](raw, nil)
	case platform.Weibo:
		return decode[WeiboSettings](raw, func(s *WeiboSettings) {
			if s.Visibility == "" {
				s.Visibility = "public"
			}
		})
	case platform.Douyin:
		return decode[DouyinSettings](raw, nil)
	case platform.Xiaohongshu:
		return decode[XiaohongshuSettings](raw, nil)
	default:
		// Unreachable: p equals a validated tag.
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, p)
	}
}

// decode unmarshals raw into V, applies defaults, then runs struct
// validation, aggregating field errors into a single message.
func decode[V any](raw json.RawMessage, applyDefaults func(*V)) (*V, error) {
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if applyDefaults != nil {
		applyDefaults(&v)
	}

	if err := validate.Struct(&v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
			}
			return nil, fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	return &v, nil
}
