// Package media 把帖子图片存到本地文件系统
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/d60-Lab/yatube/pkg/apperror"
)

// Dir 是相对 media 根目录的子目录，与存库的 Post.Image 前缀一致
const Dir = "posts"

// MaxSize 单张图片上限
const MaxSize = 5 << 20

var allowed = map[string]string{
	"image/gif":  ".gif",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Storage 把图片写到 root/posts/<uuid><ext>，对外以 baseURL 暴露
type Storage struct {
	root    string
	baseURL string
}

func NewStorage(root, baseURL string) *Storage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Storage{root: root, baseURL: baseURL}
}

func (s *Storage) Root() string { return s.root }

// Save 按内容嗅探类型（忽略客户端给的文件名与 Content-Type），返回相对路径
func (s *Storage) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", apperror.ValidationFailed("image", "empty file")
	}
	if len(data) > MaxSize {
		return "", apperror.ValidationFailed("image", "image is too large")
	}

	mt := mimetype.Detect(data)
	ext, ok := allowed[mt.String()]
	if !ok {
		return "", apperror.ValidationFailed("image",
			"upload a valid image: the file is either not an image or a corrupted image")
	}

	if err := os.MkdirAll(filepath.Join(s.root, Dir), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	name := path.Join(Dir, uuid.NewString()+ext)
	if err := writeFile(filepath.Join(s.root, filepath.FromSlash(name)), data); err != nil {
		return "", err
	}
	return name, nil
}

// Remove 删除 Save 写入的文件，文件不存在时不报错
func (s *Storage) Remove(name string) error {
	clean := path.Clean("/" + name)[1:]
	if !strings.HasPrefix(clean, Dir+"/") {
		return fmt.Errorf("refuse to remove %q outside %s", name, Dir)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// URL 把存库的相对路径转换成对外地址
func (s *Storage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.baseURL + name
}

func writeFile(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
