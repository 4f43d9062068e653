// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package netx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-getter"
	"github.com/sirupsen/logrus"
)

var ErrDownloadOptionsExhausted = errors.New("downloading options exhausted")

type Client interface {
	Download(src, dst string) error
}

func NewGoGetterClient() *GoGetterClient {
	return &GoGetterClient{
		protocols: []string{"", "git::", "file::", "http::", "s3::", "gcs::"},
	}
}

type GoGetterClient struct {
	protocols []string
}

// Download fetches a single file from src into dst.
func (g *GoGetterClient) Download(src, dst string) error {
	protocols := []string{""}
	if !g.URLHasForcedProtocol(src) {
		protocols = g.protocols
	}

	for _, protocol := range protocols {
		fullSrc := fmt.Sprintf("%s%s", protocol, src)

		logrus.Debugf("Downloading '%s' in '%s'", fullSrc, dst)

		client := &getter.Client{
			Src:  fullSrc,
			Dst:  dst,
			Mode: getter.ClientModeFile,
			Getters: map[string]getter.Getter{
				"file": &getter.FileGetter{
					Copy: true,
				},
				"git": new(getter.GitGetter),
				"gcs": new(getter.GCSGetter),
				"s3":  new(getter.S3Getter),
				"http": &getter.HttpGetter{
					Netrc: true,
				},
				"https": &getter.HttpGetter{
					Netrc: true,
				},
			},
		}

		err := client.Get()
		if err == nil {
			return nil
		}

		logrus.Debug(err)
	}

	return ErrDownloadOptionsExhausted
}

// URLHasForcedProtocol checks if the url has a forced protocol as described in hashicorp/go-getter.
func (g *GoGetterClient) URLHasForcedProtocol(url string) bool {
	for _, dp := range g.protocols {
		if dp != "" && strings.HasPrefix(url, dp) {
			return true
		}
	}

	return false
}

// IsRemote tells whether src points to something go-getter has to fetch.
func IsRemote(src string) bool {
	if strings.Contains(src, "::") {
		return true
	}

	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
