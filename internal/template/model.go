// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package template

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/creatium/gitopsctl/internal/template/mapper"
	iox "github.com/creatium/gitopsctl/internal/x/io"
)

const DefaultSuffix = ".tmpl"

var (
	ErrSourceNotSet = errors.New("source must be set")
	ErrTargetNotSet = errors.New("target must be set")
)

type Templates struct {
	Excludes        []string
	Suffix          string
	ProcessFilename bool
}

// Model renders every file below Root in Source into Target.
// Files ending with the suffix are executed as templates against Data; others are copied.
type Model struct {
	Source               fs.FS
	Root                 string
	Target               string
	Data                 map[string]any
	BaseDir              string
	Templates            Templates
	StopIfTargetNotEmpty bool
}

func NewModel(source fs.FS, root, target string, data map[string]any, tpl Templates) (*Model, error) {
	if source == nil || root == "" {
		return nil, ErrSourceNotSet
	}

	if target == "" {
		return nil, ErrTargetNotSet
	}

	if tpl.Suffix == "" {
		tpl.Suffix = DefaultSuffix
	}

	return &Model{
		Source:               source,
		Root:                 root,
		Target:               target,
		Data:                 data,
		Templates:            tpl,
		StopIfTargetNotEmpty: true,
	}, nil
}

// Generate writes the rendered tree and returns the written file paths in walk order.
func (tm *Model) Generate() ([]string, error) {
	if tm.StopIfTargetNotEmpty {
		if err := iox.CheckDirIsEmpty(tm.Target); err != nil {
			return nil, err
		}
	}

	context, err := mapper.NewMapper(tm.Data, tm.BaseDir).MapDynamicValues()
	if err != nil {
		return nil, err
	}

	excludes := make([]*regexp.Regexp, 0, len(tm.Templates.Excludes))

	for _, exc := range tm.Templates.Excludes {
		re, err := regexp.Compile(exc)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", exc, err)
		}

		excludes = append(excludes, re)
	}

	written := []string{}

	err = fs.WalkDir(tm.Source, tm.Root, func(source string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || isExcluded(excludes, source) {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(source, tm.Root), "/")

		target, err := tm.targetFilename(context, rel)
		if err != nil {
			return err
		}

		content, err := fs.ReadFile(tm.Source, source)
		if err != nil {
			return fmt.Errorf("error reading template %s: %w", source, err)
		}

		if strings.HasSuffix(source, tm.Templates.Suffix) {
			content, err = execute(path.Base(source), string(content), context)
			if err != nil {
				return err
			}
		}

		if len(bytes.TrimSpace(content)) == 0 {
			logrus.Debugf("%s resulted in an empty file, skipping", source)

			return nil
		}

		if err := iox.WriteFile(target, content); err != nil {
			return err
		}

		logrus.Debugf("%s --> %s", source, target)

		written = append(written, target)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return written, nil
}

func (tm *Model) targetFilename(context map[string]any, rel string) (string, error) {
	name := rel

	if tm.Templates.ProcessFilename {
		res, err := execute(rel, rel, context)
		if err != nil {
			return "", err
		}

		name = string(res)
	}

	name = strings.TrimSuffix(name, tm.Templates.Suffix)

	return filepath.Join(tm.Target, filepath.FromSlash(name)), nil
}

func execute(name, text string, context map[string]any) ([]byte, error) {
	tpl, err := template.New(name).Funcs(NewFuncMap().FuncMap).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var out bytes.Buffer

	if err := tpl.Execute(&out, context); err != nil {
		return nil, fmt.Errorf("error executing template %s: %w", name, err)
	}

	return out.Bytes(), nil
}

func isExcluded(excludes []*regexp.Regexp, source string) bool {
	for _, re := range excludes {
		if re.MatchString(source) {
			return true
		}
	}

	return false
}
