package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPurchasable(t *testing.T) {
	tests := []struct {
		name   string
		prompt Prompt
		want   bool
	}{
		{name: "approved premium priced", prompt: Prompt{IsPremium: true, Status: PromptStatusApproved, Price: 49900}, want: true},
		{name: "free", prompt: Prompt{IsPremium: false, Status: PromptStatusApproved, Price: 49900}, want: false},
		{name: "pending", prompt: Prompt{IsPremium: true, Status: PromptStatusPending, Price: 49900}, want: false},
		{name: "rejected", prompt: Prompt{IsPremium: true, Status: PromptStatusRejected, Price: 49900}, want: false},
		{name: "unpriced", prompt: Prompt{IsPremium: true, Status: PromptStatusApproved, Price: 0}, want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.prompt.Purchasable(), tt.name)
	}
}

func TestValidateResultURLs(t *testing.T) {
	img := ResultURL{Type: ResultTypeImage, URL: "https://cdn.example.com/a.png"}
	vid := ResultURL{Type: ResultTypeVideo, URL: "https://cdn.example.com/a.mp4"}

	assert.NoError(t, ValidateResultURLs([]ResultURL{img}))
	assert.NoError(t, ValidateResultURLs([]ResultURL{img, vid}))
	assert.NoError(t, ValidateResultURLs([]ResultURL{
		img,
		{Type: ResultTypeAudio, URL: "https://cdn.example.com/a.mp3"},
		{Type: ResultTypeScenario, URL: "https://cdn.example.com/a.json"},
	}))

	assert.Error(t, ValidateResultURLs(nil), "empty set")
	assert.Error(t, ValidateResultURLs([]ResultURL{img, img, img, img, img, img}), "more than five entries")
	assert.Error(t, ValidateResultURLs([]ResultURL{vid}), "no image")
	assert.Error(t, ValidateResultURLs([]ResultURL{img, vid, vid}), "two videos")
	assert.Error(t, ValidateResultURLs([]ResultURL{{Type: "gif", URL: "https://x"}}), "unknown type")
	assert.Error(t, ValidateResultURLs([]ResultURL{{Type: ResultTypeImage, URL: ""}}), "missing url")
}

func TestSetTags(t *testing.T) {
	p := &Prompt{}
	require.NoError(t, p.SetTags([]string{" portrait ", "", "cinematic"}))

	tags, err := p.GetTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"portrait", "cinematic"}, tags, "blanks dropped, whitespace trimmed")

	require.NoError(t, p.SetTags(nil))
	assert.Empty(t, p.Tags)
	tags, err = p.GetTags()
	require.NoError(t, err)
	assert.Nil(t, tags)

	assert.Error(t, p.SetTags([]string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}), "more than ten tags")

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'x'
	}
	assert.Error(t, p.SetTags([]string{string(long)}), "tag over fifty characters")
}

func TestSetAndGetResultURLs(t *testing.T) {
	p := &Prompt{}
	in := []ResultURL{
		{Type: ResultTypeImage, URL: "https://cdn.example.com/a.png"},
		{Type: ResultTypeVideo, URL: "https://cdn.example.com/a.mp4"},
	}
	require.NoError(t, p.SetResultURLs(in))

	out, err := p.GetResultURLs()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
