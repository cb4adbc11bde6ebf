package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopularTags_RanksByFrequency(t *testing.T) {
	rows := []string{
		`["portrait","cinematic"]`,
		`["portrait","drone"]`,
		`["portrait","cinematic"]`,
	}

	tags := popularTags(rows, 20)
	assert.Equal(t, []string{"portrait", "cinematic", "drone"}, tags)
}

func TestPopularTags_SkipsMalformedRowsAndCuts(t *testing.T) {
	rows := []string{
		`["a","b"]`,
		`not json`,
		`["b","c"]`,
		`["c"]`,
	}

	tags := popularTags(rows, 2)
	assert.Equal(t, []string{"b", "c"}, tags)
}

func TestPopularTags_TiesBreakAlphabetically(t *testing.T) {
	tags := popularTags([]string{`["zebra","apple"]`}, 20)
	assert.Equal(t, []string{"apple", "zebra"}, tags)
}

func TestPopularTags_Empty(t *testing.T) {
	assert.Empty(t, popularTags(nil, 20))
}
