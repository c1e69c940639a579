package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"time"
	"unicode/utf8"
)

// 页面模板，名称与 web/templates 下的相对路径一致
var pageNames = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create.html",
	"posts/follow.html",
	"core/404.html",
	"core/500.html",
	"users/login.html",
	"users/signup.html",
}

// Renderer 启动时解析全部模板：每个页面 = base + includes + 页面自身
type Renderer struct {
	common *template.Template
	pages  map[string]*template.Template
}

func NewRenderer(fsys fs.FS, mediaURL func(string) string) (*Renderer, error) {
	funcs := template.FuncMap{
		"mediaURL": mediaURL,
		"date":     func(t time.Time) string { return t.Format("02 Jan 2006") },
		"truncate": truncate,
		"selected": func(sel *uint, id uint) bool { return sel != nil && *sel == id },
	}

	common, err := template.New("base").Funcs(funcs).ParseFS(fsys, "templates/base.html", "templates/includes/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{common: common, pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := common.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, path.Join("templates", name)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Page 渲染完整页面
func (r *Renderer) Page(name string, data any) ([]byte, error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("template %s not registered", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Fragment 渲染 includes 中定义的片段（如 feed）
func (r *Renderer) Fragment(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.common.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render fragment %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
