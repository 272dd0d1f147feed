package models_test

import (
	"strings"
	"testing"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestTransition_AllowedPaths(t *testing.T) {
	cases := []struct {
		from  models.PostStatus
		event models.WorkflowEvent
		to    models.PostStatus
	}{
		{models.StatusDraft, models.EventSubmit, models.StatusPending},
		{models.StatusDraft, models.EventDiscard, models.StatusDeleted},
		{models.StatusPending, models.EventApprove, models.StatusPublished},
		{models.StatusPending, models.EventReject, models.StatusRejected},
		{models.StatusPending, models.EventReturn, models.StatusDraft},
		{models.StatusPending, models.EventWithdraw, models.StatusDeleted},
		{models.StatusRejected, models.EventSubmit, models.StatusPending},
		{models.StatusRejected, models.EventUserEdit, models.StatusDraft},
		{models.StatusRejected, models.EventDiscard, models.StatusDeleted},
		{models.StatusPublished, models.EventDelete, models.StatusDeleted},
	}

	for _, tc := range cases {
		to, ok := models.Transition(tc.from, tc.event)
		assert.True(t, ok, "%s + %s", tc.from, tc.event)
		assert.Equal(t, tc.to, to)
	}
}

func TestTransition_ForbiddenPaths(t *testing.T) {
	cases := []struct {
		from  models.PostStatus
		event models.WorkflowEvent
	}{
		{models.StatusDraft, models.EventApprove},
		{models.StatusDraft, models.EventWithdraw},
		{models.StatusPending, models.EventSubmit},
		{models.StatusPending, models.EventDiscard},
		{models.StatusRejected, models.EventApprove},
		{models.StatusPublished, models.EventApprove},
		{models.StatusPublished, models.EventSubmit},
		{models.StatusDeleted, models.EventSubmit},
	}

	for _, tc := range cases {
		from, ok := models.Transition(tc.from, tc.event)
		assert.False(t, ok, "%s + %s", tc.from, tc.event)
		assert.Equal(t, tc.from, from)
	}
}

func TestScanTags(t *testing.T) {
	post := &models.Post{Content: "Объявление недели #PINNED и #Announce"}

	post.ScanTags()

	assert.True(t, post.IsPinned)
	assert.True(t, post.IsAnnouncement)
}

func TestScanTags_NoTags(t *testing.T) {
	post := &models.Post{Content: "обычный текст без тегов"}

	post.ScanTags()

	assert.False(t, post.IsPinned)
	assert.False(t, post.IsAnnouncement)
}

func TestPreview_RuneSafe(t *testing.T) {
	post := &models.Post{Content: strings.Repeat("я", 250)}

	preview := post.Preview(200)

	assert.Equal(t, strings.Repeat("я", 200)+"...", preview)
}

func TestPreview_ShortContent(t *testing.T) {
	post := &models.Post{Content: "короткий текст"}

	assert.Equal(t, "короткий текст", post.Preview(200))
}
