// Copyright 2024 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package curl builds curl command lines for simple HTTP requests.
package curl

import (
	"encoding/json"
	"fmt"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// Method is an HTTP method.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists the supported methods.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

var requestSchema = args.NewSchema(
	args.Param("redirect", args.Flag("-L")),
	args.Param("silent", args.Flag("-s")),
	args.Param("show_error", args.Flag("-S")),
	args.Param("fail", args.Flag("-f")),
	args.Param("headers", args.Repeat("-H", args.PairFormat(func(k, v string) string {
		return k + ": " + v
	}))),
	args.Param("payload", args.Once("-d", args.Format(jsonPayload))),
	args.Param("output", args.Once("-o")),
	args.Required("url", args.Positional()),
)

// jsonPayload encodes a request body. Strings and byte slices are sent as is.
func jsonPayload(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case json.RawMessage:
		return string(t), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(b), nil
}

func methodCommand(m Method) *pipe.Command {
	return &pipe.Command{
		Name:   string(m),
		Tokens: []string{"-X", string(m)},
		Help:   "Send a " + string(m) + " request",
		Schema: requestSchema,
	}
}

var commands = func() []*pipe.Command {
	out := make([]*pipe.Command, 0, len(Methods))
	for _, m := range Methods {
		out = append(out, methodCommand(m))
	}
	return out
}()

// Tool describes the curl command line. Its commands are named after the
// HTTP methods.
var Tool = &pipe.Tool{
	Name:     "curl",
	Help:     "Transfer data from or to a server",
	Commands: commands,
}

// Options are the options of a request.
type Options struct {
	pipe.Extra

	Redirect  bool       `arg:"redirect"`
	Silent    bool       `arg:"silent"`
	ShowError bool       `arg:"show_error"`
	Fail      bool       `arg:"fail"`
	Headers   args.Pairs `arg:"headers"`

	// Payload is sent with -d. Values other than strings and byte slices are
	// encoded as JSON.
	Payload any    `arg:"payload"`
	Output  string `arg:"output"`
	URL     string `arg:"url"`
}

// Request builds "curl -X METHOD ... URL". The url argument takes precedence
// over opts.URL.
func Request(m Method, url string, opts *Options) *pipe.Pipe {
	var o Options
	if opts != nil {
		o = *opts
	}
	if url != "" {
		o.URL = url
	}

	cmd, ok := Tool.Lookup(string(m))
	if !ok {
		return pipe.New(Tool.Bin()).Fail(fmt.Errorf("%w: unsupported method %q", args.ErrInvalidValue, m))
	}
	return Tool.New(nil).Invoke(cmd, &o)
}

// Get builds a GET request.
func Get(url string, opts *Options) *pipe.Pipe {
	return Request(MethodGet, url, opts)
}

// Post builds a POST request.
func Post(url string, opts *Options) *pipe.Pipe {
	return Request(MethodPost, url, opts)
}

// Put builds a PUT request.
func Put(url string, opts *Options) *pipe.Pipe {
	return Request(MethodPut, url, opts)
}

// Patch builds a PATCH request.
func Patch(url string, opts *Options) *pipe.Pipe {
	return Request(MethodPatch, url, opts)
}

// Delete builds a DELETE request.
func Delete(url string, opts *Options) *pipe.Pipe {
	return Request(MethodDelete, url, opts)
}

// Download fetches url into output, following redirects and failing on HTTP
// errors.
func Download(url, output string) *pipe.Pipe {
	return Get(url, &Options{
		Redirect:  true,
		Silent:    true,
		ShowError: true,
		Fail:      true,
		Output:    output,
	})
}
