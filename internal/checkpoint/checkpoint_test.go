// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package checkpoint

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/squad-localize/pkg/types"
)

func article(title string) types.Article {
	return types.Article{
		Title: title,
		Paragraphs: []types.Paragraph{{
			Context: "පැරිස්",
			QAs:     []types.QA{{ID: title, Question: "?", Answers: []types.Answer{{Text: "පැරිස්", AnswerStart: 3}}}},
		}},
	}
}

func TestCheckpointSaveAndResume(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir, "en", "si")
	require.NoError(t, err)
	runID := c.RunID()
	_, err = uuid.Parse(runID)
	require.NoError(t, err)

	require.NoError(t, c.SaveArticle(0, article("first")))
	require.NoError(t, c.SaveArticle(300, article("later")))
	require.NoError(t, c.Close())

	c, err = Open(dir, "en", "si")
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, runID, c.RunID())

	got, err := c.Articles()
	require.NoError(t, err)
	assert.Equal(t, map[int]types.Article{0: article("first"), 300: article("later")}, got)
}

func TestCheckpointLanguageMismatch(t *testing.T) {
	dir := t.TempDir()

	c, err := Open(dir, "en", "si")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = Open(dir, "en", "ta")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLanguageMismatch)
}

func TestCheckpointReset(t *testing.T) {
	c, err := Open(t.TempDir(), "en", "si")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SaveArticle(1, article("a")))
	before := c.RunID()

	require.NoError(t, c.Reset())
	assert.NotEqual(t, before, c.RunID())

	got, err := c.Articles()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Remove(dir))

	c, err := Open(dir, "en", "si")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, Remove(dir))

	c, err = Open(dir, "en", "ta")
	require.NoError(t, err)
	defer c.Close()
	articles, err := c.Articles()
	require.NoError(t, err)
	assert.Empty(t, articles)
}
