package storage

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const imagePrefix = "profile_pics/"

// ErrUnsupportedImage is returned for files that are not jpg or png.
var ErrUnsupportedImage = errors.New("only .jpg, .jpeg and .png images are allowed")

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ImageContentType returns the content type for an uploaded file name.
func ImageContentType(filename string) (string, error) {
	ct, ok := allowedExt[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return ct, nil
}

// ImageKey builds the object key of a profile picture. The name is hashed
// so uploads never collide and never leak the original file name.
func ImageKey(userID uint, accountName, filename string, now time.Time) (string, error) {
	if _, err := ImageContentType(filename); err != nil {
		return "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	sum := md5.Sum([]byte(accountName + filename + now.Format(time.RFC3339Nano)))
	return fmt.Sprintf("%s%d_%s.%s", imagePrefix, userID, hex.EncodeToString(sum[:]), ext), nil
}
