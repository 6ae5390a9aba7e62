// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package dot

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FORMATS lists the supported export formats.
var FORMATS = []string{"dot", "pdf", "svg", "png"}

// EXPORT_TIMEOUT bounds how long the Graphviz executable may run.
const EXPORT_TIMEOUT = 30 * time.Second

// ErrUnsupportedFormat indicates an export format not listed in FORMATS.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Export writes a rendered e-graph to a file in a given directory, using the
// Graphviz "dot" executable for all formats other than "dot" itself.  The
// file is named after the given stem, and its path is returned.
func Export(ctx context.Context, dot string, dir string, stem string, format string) (string, error) {
	if !slices.Contains(FORMATS, format) {
		return "", errors.Wrapf(ErrUnsupportedFormat, "%s (expected one of %s)", format, strings.Join(FORMATS, ", "))
	} else if info, err := os.Stat(dir); err != nil {
		return "", errors.Wrapf(err, "cannot export to %s", dir)
	} else if !info.IsDir() {
		return "", errors.Errorf("cannot export to %s (not a directory)", dir)
	}
	//
	path := filepath.Join(dir, stem+"."+format)
	//
	if format == "dot" {
		if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
			return "", errors.Wrapf(err, "cannot write %s", path)
		}
		//
		return path, nil
	}
	//
	ctx, cancel := context.WithTimeout(ctx, EXPORT_TIMEOUT)
	defer cancel()
	//
	var stderr bytes.Buffer
	//
	cmd := exec.CommandContext(ctx, "dot", "-T"+format, "-o", path)
	cmd.Stdin = strings.NewReader(dot)
	cmd.Stderr = &stderr
	//
	log.Debugf("running dot -T%s -o %s", format, path)
	//
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "graphviz failed (%s)", strings.TrimSpace(stderr.String()))
	}
	//
	return path, nil
}
