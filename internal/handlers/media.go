package handlers

import (
	"encoding/json"
	"strings"

	"github.com/VoHoang203/VibeMelodyBE/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const (
	fieldAudioFile = "audioFile"
	fieldImageFile = "imageFile"
)

// media moves multipart uploads into object storage. A nil uploader means
// storage is disabled and only URL fields are accepted.
type media struct {
	uploader storage.Uploader
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// upload stores the named form file and returns its URL, or "" when the
// request carries no such file.
func (m media) upload(c *fiber.Ctx, field, folder string) (string, error) {
	if !isMultipart(c) {
		return "", nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if m.uploader == nil {
		return "", storage.ErrDisabled
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return m.uploader.Upload(c.UserContext(), folder, fh.Filename, f, fh.Size, fh.Header.Get(fiber.HeaderContentType))
}

// formSongIDs reads the ordered track list sent as a JSON array in the
// songIds form field.
func formSongIDs(c *fiber.Ctx) ([]string, bool, error) {
	raw := c.FormValue("songIds")
	if raw == "" {
		return nil, false, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}
