package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/scenery/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func img(p string) domain.Image    { return domain.Image{File: domain.File{Path: p}} }
func doc(p string) domain.Document { return domain.Document{File: domain.File{Path: p}} }
func aud(p string) domain.Audio    { return domain.Audio{File: domain.File{Path: p}} }

func TestNewGroup(t *testing.T) {
	eleven := make([]domain.Content, 0, 11)
	for i := 0; i < 11; i++ {
		eleven = append(eleven, img("x.png"))
	}

	tests := []struct {
		name    string
		members []domain.Content
		wantErr error
	}{
		{"empty", nil, domain.ErrEmptyGroup},
		{"sticker member", []domain.Content{domain.Sticker{File: domain.File{Path: "s.webp"}}}, domain.ErrUnsupportedMember},
		{"buttons member", []domain.Content{domain.ButtonSet{}}, domain.ErrUnsupportedMember},
		{"eleven items", eleven, domain.ErrTooManyItems},
		{"two captions", []domain.Content{domain.Text{Body: "a"}, domain.Text{Body: "b"}, img("x.png")}, domain.ErrDuplicateCaption},
		{"two documents", []domain.Content{doc("a.pdf"), doc("b.pdf")}, domain.ErrDuplicateDocument},
		{"document with image", []domain.Content{doc("a.pdf"), img("x.png")}, domain.ErrDocumentMixing},
		{"two audios", []domain.Content{aud("a.mp3"), aud("b.mp3")}, domain.ErrDuplicateAudio},
		{"audio with image", []domain.Content{img("x.png"), aud("a.mp3")}, domain.ErrAudioMixing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := domain.NewGroup(tt.members...)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, tt.wantErr)

			var gerr *domain.GroupError
			assert.True(t, errors.As(err, &gerr))
		})
	}
}

func TestNewGroup_DuplicatesAreTooManyItems(t *testing.T) {
	_, err := domain.NewGroup(doc("a.pdf"), doc("b.pdf"))
	assert.ErrorIs(t, err, domain.ErrTooManyItems)
	assert.NotErrorIs(t, err, domain.ErrDocumentMixing)
}

func TestNewGroup_CaptionExtracted(t *testing.T) {
	g, err := domain.NewGroup(domain.Text{Body: "Holiday"}, img("a.jpg"), img("b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "Holiday", g.Caption)
	assert.Len(t, g.Items, 2)
	require.NoError(t, g.Validate())
}

func TestNewGroup_TenItemsPlusCaption(t *testing.T) {
	members := []domain.Content{domain.Text{Body: "ten"}}
	for i := 0; i < 10; i++ {
		members = append(members, domain.Video{File: domain.File{Path: "v.mp4"}})
	}
	g, err := domain.NewGroup(members...)
	require.NoError(t, err)
	assert.Len(t, g.Items, 10)
}

func TestNewGroup_SingleDocumentWithCaption(t *testing.T) {
	g, err := domain.NewGroup(doc("a.pdf"), domain.Text{Body: "read me"})
	require.NoError(t, err)
	assert.Equal(t, "read me", g.Caption)
}

func TestRound_Validate(t *testing.T) {
	err := domain.Round{File: domain.File{Path: "r.mp4"}, Width: 5}.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidDimension)

	assert.NoError(t, domain.Round{File: domain.File{Path: "r.mp4"}, Width: 10}.Validate())
}

func TestContentError_Message(t *testing.T) {
	err := &domain.ContentError{Kind: domain.KindImage, Path: "cat.bmp", Err: domain.ErrUnsupportedFormat}
	assert.Equal(t, `image post "cat.bmp": unsupported format`, err.Error())
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
