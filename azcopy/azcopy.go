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

// Package azcopy builds command lines for AzCopy, the Azure Storage copy
// tool.
package azcopy

import (
	"fmt"
	"strings"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// LogLevel is the log file verbosity.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
	LogLevelNone    LogLevel = "NONE"
)

// OutputLevel is the console verbosity.
type OutputLevel string

const (
	OutputLevelDefault   OutputLevel = "default"
	OutputLevelEssential OutputLevel = "essential"
	OutputLevelQuiet     OutputLevel = "quiet"
)

// OutputType is the console output format.
type OutputType string

const (
	OutputTypeText OutputType = "text"
	OutputTypeJSON OutputType = "json"
)

// BlobType is the type of a destination blob.
type BlobType string

const (
	BlobTypeDetect     BlobType = "Detect"
	BlobTypeBlockBlob  BlobType = "BlockBlob"
	BlobTypePageBlob   BlobType = "PageBlob"
	BlobTypeAppendBlob BlobType = "AppendBlob"
)

// BlobTier is an access tier.
type BlobTier string

const (
	BlobTierHot     BlobTier = "hot"
	BlobTierCool    BlobTier = "cool"
	BlobTierArchive BlobTier = "archive"
)

// CheckMD5 is how strictly MD5 hashes are validated on download.
type CheckMD5 string

const (
	CheckMD5NoCheck                  CheckMD5 = "NoCheck"
	CheckMD5LogOnly                  CheckMD5 = "LogOnly"
	CheckMD5FailIfDifferent          CheckMD5 = "FailIfDifferent"
	CheckMD5FailIfDifferentOrMissing CheckMD5 = "FailIfDifferentOrMissing"
)

// SnapshotRemoval is how snapshots are handled by remove.
type SnapshotRemoval string

const (
	SnapshotRemovalInclude SnapshotRemoval = "include"
	SnapshotRemovalOnly    SnapshotRemoval = "only"
)

// Overwrite is how conflicting destination files are handled.
type Overwrite string

const (
	OverwriteTrue          Overwrite = "true"
	OverwriteFalse         Overwrite = "false"
	OverwritePrompt        Overwrite = "prompt"
	OverwriteIfSourceNewer Overwrite = "ifSourceNewer"
)

func once(prefix string, opts ...args.Option) args.Kind {
	return args.Once(prefix, append(opts, args.Combined())...)
}

// pairList renders a mapping as "k=v" entries joined by sep, the form azcopy
// expects for metadata and blob tags.
func pairList(sep string) args.FormatFunc {
	return func(v any) (string, error) {
		var pairs args.Pairs
		switch t := v.(type) {
		case args.Pairs:
			pairs = t
		case map[string]string:
			pairs = args.SortedPairs(t)
		case map[string]any:
			pairs = args.SortedPairs(t)
		default:
			return "", fmt.Errorf("%w: expected a mapping, got %T", args.ErrKindMismatch, v)
		}

		parts := make([]string, 0, len(pairs))
		for _, p := range pairs {
			s, err := args.Unwrap(p.Value)
			if err != nil {
				return "", fmt.Errorf("key %q: %w", p.Key, err)
			}
			parts = append(parts, p.Key+"="+s)
		}
		return strings.Join(parts, sep), nil
	}
}

// catalogue holds every sub-command parameter. Commands pick the ones they
// accept, in the order they are emitted.
var catalogue = map[string]args.Kind{
	"aad_endpoint":         once("--aad-endpoint"),
	"application_id":       once("--application-id"),
	"certificate_path":     once("--certificate-path"),
	"identity":             args.Flag("--identity"),
	"identity_client_id":   once("--identity-client-id"),
	"identity_object_id":   once("--identity-object-id"),
	"identity_resource_id": once("--identity-resource-id"),
	"service_principal":    args.Flag("--service-principal"),
	"tenant_id":            once("--tenant-id"),

	"as_subdir":                   once("--as-subdir"),
	"backup":                      args.Flag("--backup"),
	"blob_tags":                   once("--blob-tags", args.Format(pairList("&"))),
	"blob_type":                   once("--blob-type", args.OneOf(BlobTypeDetect, BlobTypeBlockBlob, BlobTypePageBlob, BlobTypeAppendBlob)),
	"block_blob_tier":             once("--block-blob-tier", args.OneOf(BlobTierHot, BlobTierCool, BlobTierArchive)),
	"block_size_mb":               once("--block-size-mb"),
	"cache_control":               once("--cache-control"),
	"check_length":                once("--check-length"),
	"check_md5":                   once("--check-md5", args.OneOf(CheckMD5NoCheck, CheckMD5LogOnly, CheckMD5FailIfDifferent, CheckMD5FailIfDifferentOrMissing)),
	"content_disposition":         once("--content-disposition"),
	"content_encoding":            once("--content-encoding"),
	"content_language":            once("--content-language"),
	"content_type":                once("--content-type"),
	"cpk_by_name":                 once("--cpk-by-name"),
	"cpk_by_value":                args.Flag("--cpk-by-value"),
	"decompress":                  args.Flag("--decompress"),
	"delete_destination":          once("--delete-destination"),
	"delete_snapshots":            once("--delete-snapshots", args.OneOf(SnapshotRemovalInclude, SnapshotRemovalOnly)),
	"disable_auto_decoding":       args.Flag("--disable-auto-decoding"),
	"dry_run":                     args.Flag("--dry-run"),
	"exclude_attributes":          once("--exclude-attributes", args.Join(";")),
	"exclude_blob_type":           once("--exclude-blob-type", args.Join(";")),
	"exclude_path":                once("--exclude-path", args.Join(";")),
	"exclude_pattern":             once("--exclude-pattern", args.Join(";")),
	"exclude_regex":               once("--exclude-regex", args.Join(";")),
	"follow_symlinks":             args.Flag("--follow-symlinks"),
	"force_if_read_only":          args.Flag("--force-if-read-only"),
	"from_to":                     once("--from-to"),
	"include_after":               once("--include-after"),
	"include_attributes":          once("--include-attributes", args.Join(";")),
	"include_before":              once("--include-before"),
	"include_directory_stub":      args.Flag("--include-directory-stub"),
	"include_path":                once("--include-path", args.Join(";")),
	"include_pattern":             once("--include-pattern", args.Join(";")),
	"include_regex":               once("--include-regex", args.Join(";")),
	"list_of_files":               once("--list-of-files"),
	"list_of_versions":            once("--list-of-versions"),
	"metadata":                    once("--metadata", args.Format(pairList(";"))),
	"mirror_mode":                 args.Flag("--mirror-mode"),
	"no_guess_mime_type":          args.Flag("--no-guess-mime-type"),
	"overwrite":                   once("--overwrite", args.OneOf(OverwriteTrue, OverwriteFalse, OverwritePrompt, OverwriteIfSourceNewer)),
	"page_blob_tier":              once("--page-blob-tier", args.OneOf(BlobTierHot, BlobTierCool, BlobTierArchive)),
	"permanent_delete":            once("--permanent-delete"),
	"preserve_last_modified_time": args.Flag("--preserve-last-modified-time"),
	"preserve_owner":              once("--preserve-owner"),
	"preserve_permissions":        args.Flag("--preserve-permissions"),
	"preserve_posix_properties":   args.Flag("--preserve-posix-properties"),
	"preserve_smb_info":           once("--preserve-smb-info"),
	"put_md5":                     args.Flag("--put-md5"),
	"recursive":                   args.Flag("--recursive"),
	"s2s_detect_source_changed":   args.Flag("--s2s-detect-source-changed"),
	"s2s_handle_invalid_metadata": once("--s2s-handle-invalid-metadata"),
	"s2s_preserve_access_tier":    once("--s2s-preserve-access-tier"),
	"s2s_preserve_blob_tags":      args.Flag("--s2s-preserve-blob-tags"),
	"s2s_preserve_properties":     once("--s2s-preserve-properties"),
}

// schema builds a schema from the catalogue. It panics on names missing from
// the catalogue.
func schema(positional []string, names ...string) *args.Schema {
	entries := make([]args.Entry, 0, len(positional)+len(names))
	for _, name := range positional {
		entries = append(entries, args.Required(name, args.Positional()))
	}
	for _, name := range names {
		kind, ok := catalogue[name]
		if !ok {
			panic(fmt.Sprintf("azcopy: unknown parameter %q", name))
		}
		entries = append(entries, args.Param(name, kind))
	}
	return args.NewSchema(entries...)
}

var (
	loginCmd = &pipe.Command{
		Name:  "login",
		Help:  "Log in to Microsoft Entra ID",
		Extra: pipe.ExtraBefore,
		Schema: schema(nil,
			"aad_endpoint", "application_id", "certificate_path", "identity",
			"identity_client_id", "identity_object_id", "identity_resource_id",
			"service_principal", "tenant_id",
		),
	}

	copyCmd = &pipe.Command{
		Name:  "copy",
		Help:  "Copy data between a source and a destination",
		Extra: pipe.ExtraBefore,
		Schema: schema([]string{"source", "destination"},
			"as_subdir", "backup", "blob_tags", "blob_type", "block_blob_tier",
			"block_size_mb", "cache_control", "check_length", "check_md5",
			"content_disposition", "content_encoding", "content_language",
			"content_type", "cpk_by_name", "cpk_by_value", "decompress",
			"disable_auto_decoding", "dry_run", "exclude_attributes",
			"exclude_blob_type", "exclude_path", "exclude_pattern", "exclude_regex",
			"follow_symlinks", "force_if_read_only", "from_to", "include_after",
			"include_attributes", "include_before", "include_directory_stub",
			"include_path", "include_pattern", "include_regex", "list_of_files",
			"list_of_versions", "metadata", "no_guess_mime_type", "overwrite",
			"page_blob_tier", "preserve_last_modified_time", "preserve_owner",
			"preserve_permissions", "preserve_posix_properties", "preserve_smb_info",
			"put_md5", "recursive", "s2s_detect_source_changed",
			"s2s_handle_invalid_metadata", "s2s_preserve_access_tier",
			"s2s_preserve_blob_tags", "s2s_preserve_properties",
		),
	}

	syncCmd = &pipe.Command{
		Name:  "sync",
		Help:  "Replicate a source to a destination",
		Extra: pipe.ExtraBefore,
		Schema: schema([]string{"source", "destination"},
			"block_size_mb", "check_md5", "cpk_by_name", "cpk_by_value",
			"delete_destination", "dry_run", "exclude_attributes", "exclude_path",
			"exclude_pattern", "exclude_regex", "from_to", "include_attributes",
			"include_pattern", "include_regex", "mirror_mode",
			"preserve_permissions", "preserve_posix_properties", "preserve_smb_info",
			"put_md5", "recursive", "s2s_preserve_access_tier",
			"s2s_preserve_blob_tags",
		),
	}

	removeCmd = &pipe.Command{
		Name:  "remove",
		Help:  "Delete blobs or files",
		Extra: pipe.ExtraBefore,
		Schema: schema([]string{"target"},
			"delete_snapshots", "dry_run", "exclude_path", "exclude_pattern",
			"force_if_read_only", "from_to", "include_after", "include_before",
			"include_path", "include_pattern", "list_of_files", "list_of_versions",
			"permanent_delete", "recursive",
		),
	}
)

// Tool describes the azcopy command line.
var Tool = &pipe.Tool{
	Name:  "azcopy",
	Help:  "Copy data to and from Azure Storage",
	Extra: pipe.ExtraBefore,
	Schema: args.NewSchema(
		args.Param("cap_mbps", once("--cap-mbps")),
		args.Param("log_level", once("--log-level",
			args.OneOf(LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelNone))),
		args.Param("output_level", once("--output-level",
			args.OneOf(OutputLevelDefault, OutputLevelEssential, OutputLevelQuiet))),
		args.Param("output_type", once("--output-type", args.OneOf(OutputTypeText, OutputTypeJSON))),
		args.Param("trusted_microsoft_suffixes", once("--trusted-microsoft-suffixes", args.Join(";"))),
	),
	Commands: []*pipe.Command{loginCmd, copyCmd, syncCmd, removeCmd},
}

// Options are the global azcopy options.
type Options struct {
	pipe.Extra

	CapMbps                  float64     `arg:"cap_mbps"`
	LogLevel                 LogLevel    `arg:"log_level"`
	OutputLevel              OutputLevel `arg:"output_level"`
	OutputType               OutputType  `arg:"output_type"`
	TrustedMicrosoftSuffixes []string    `arg:"trusted_microsoft_suffixes"`
}

// LoginOptions are the options of "azcopy login".
type LoginOptions struct {
	pipe.Extra

	AADEndpoint        string `arg:"aad_endpoint"`
	ApplicationID      string `arg:"application_id"`
	CertificatePath    string `arg:"certificate_path"`
	Identity           bool   `arg:"identity"`
	IdentityClientID   string `arg:"identity_client_id"`
	IdentityObjectID   string `arg:"identity_object_id"`
	IdentityResourceID string `arg:"identity_resource_id"`
	ServicePrincipal   bool   `arg:"service_principal"`
	TenantID           string `arg:"tenant_id"`
}

// CopyOptions are the options of "azcopy copy".
type CopyOptions struct {
	pipe.Extra

	Source      string `arg:"source"`
	Destination string `arg:"destination"`

	AsSubdir                 *bool      `arg:"as_subdir"`
	Backup                   bool       `arg:"backup"`
	BlobTags                 args.Pairs `arg:"blob_tags"`
	BlobType                 BlobType   `arg:"blob_type"`
	BlockBlobTier            BlobTier   `arg:"block_blob_tier"`
	BlockSizeMB              float64    `arg:"block_size_mb"`
	CacheControl             string     `arg:"cache_control"`
	CheckLength              *bool      `arg:"check_length"`
	CheckMD5                 CheckMD5   `arg:"check_md5"`
	ContentDisposition       string     `arg:"content_disposition"`
	ContentEncoding          string     `arg:"content_encoding"`
	ContentLanguage          string     `arg:"content_language"`
	ContentType              string     `arg:"content_type"`
	CPKByName                string     `arg:"cpk_by_name"`
	CPKByValue               bool       `arg:"cpk_by_value"`
	Decompress               bool       `arg:"decompress"`
	DisableAutoDecoding      bool       `arg:"disable_auto_decoding"`
	DryRun                   bool       `arg:"dry_run"`
	ExcludeAttributes        []string   `arg:"exclude_attributes"`
	ExcludeBlobType          []BlobType `arg:"exclude_blob_type"`
	ExcludePath              []string   `arg:"exclude_path"`
	ExcludePattern           []string   `arg:"exclude_pattern"`
	ExcludeRegex             []string   `arg:"exclude_regex"`
	FollowSymlinks           bool       `arg:"follow_symlinks"`
	ForceIfReadOnly          bool       `arg:"force_if_read_only"`
	FromTo                   string     `arg:"from_to"`
	IncludeAfter             string     `arg:"include_after"`
	IncludeAttributes        []string   `arg:"include_attributes"`
	IncludeBefore            string     `arg:"include_before"`
	IncludeDirectoryStub     bool       `arg:"include_directory_stub"`
	IncludePath              []string   `arg:"include_path"`
	IncludePattern           []string   `arg:"include_pattern"`
	IncludeRegex             []string   `arg:"include_regex"`
	ListOfFiles              string     `arg:"list_of_files"`
	ListOfVersions           string     `arg:"list_of_versions"`
	Metadata                 args.Pairs `arg:"metadata"`
	NoGuessMimeType          bool       `arg:"no_guess_mime_type"`
	Overwrite                Overwrite  `arg:"overwrite"`
	PageBlobTier             BlobTier   `arg:"page_blob_tier"`
	PreserveLastModifiedTime bool       `arg:"preserve_last_modified_time"`
	PreserveOwner            *bool      `arg:"preserve_owner"`
	PreservePermissions      bool       `arg:"preserve_permissions"`
	PreservePOSIXProperties  bool       `arg:"preserve_posix_properties"`
	PreserveSMBInfo          *bool      `arg:"preserve_smb_info"`
	PutMD5                   bool       `arg:"put_md5"`
	Recursive                bool       `arg:"recursive"`
	S2SDetectSourceChanged   bool       `arg:"s2s_detect_source_changed"`
	S2SHandleInvalidMetadata string     `arg:"s2s_handle_invalid_metadata"`
	S2SPreserveAccessTier    *bool      `arg:"s2s_preserve_access_tier"`
	S2SPreserveBlobTags      bool       `arg:"s2s_preserve_blob_tags"`
	S2SPreserveProperties    *bool      `arg:"s2s_preserve_properties"`
}

// SyncOptions are the options of "azcopy sync".
type SyncOptions struct {
	pipe.Extra

	Source      string `arg:"source"`
	Destination string `arg:"destination"`

	BlockSizeMB             float64  `arg:"block_size_mb"`
	CheckMD5                CheckMD5 `arg:"check_md5"`
	CPKByName               string   `arg:"cpk_by_name"`
	CPKByValue              bool     `arg:"cpk_by_value"`
	DeleteDestination       *bool    `arg:"delete_destination"`
	DryRun                  bool     `arg:"dry_run"`
	ExcludeAttributes       []string `arg:"exclude_attributes"`
	ExcludePath             []string `arg:"exclude_path"`
	ExcludePattern          []string `arg:"exclude_pattern"`
	ExcludeRegex            []string `arg:"exclude_regex"`
	FromTo                  string   `arg:"from_to"`
	IncludeAttributes       []string `arg:"include_attributes"`
	IncludePattern          []string `arg:"include_pattern"`
	IncludeRegex            []string `arg:"include_regex"`
	MirrorMode              bool     `arg:"mirror_mode"`
	PreservePermissions     bool     `arg:"preserve_permissions"`
	PreservePOSIXProperties bool     `arg:"preserve_posix_properties"`
	PreserveSMBInfo         *bool    `arg:"preserve_smb_info"`
	PutMD5                  bool     `arg:"put_md5"`
	Recursive               bool     `arg:"recursive"`
	S2SPreserveAccessTier   *bool    `arg:"s2s_preserve_access_tier"`
	S2SPreserveBlobTags     bool     `arg:"s2s_preserve_blob_tags"`
}

// RemoveOptions are the options of "azcopy remove".
type RemoveOptions struct {
	pipe.Extra

	Target string `arg:"target"`

	DeleteSnapshots SnapshotRemoval `arg:"delete_snapshots"`
	DryRun          bool            `arg:"dry_run"`
	ExcludePath     []string        `arg:"exclude_path"`
	ExcludePattern  []string        `arg:"exclude_pattern"`
	ForceIfReadOnly bool            `arg:"force_if_read_only"`
	FromTo          string          `arg:"from_to"`
	IncludeAfter    string          `arg:"include_after"`
	IncludeBefore   string          `arg:"include_before"`
	IncludePath     []string        `arg:"include_path"`
	IncludePattern  []string        `arg:"include_pattern"`
	ListOfFiles     string          `arg:"list_of_files"`
	ListOfVersions  string          `arg:"list_of_versions"`
	PermanentDelete string          `arg:"permanent_delete"`
	Recursive       bool            `arg:"recursive"`
}

// CLI builds an azcopy command line.
type CLI struct {
	*pipe.Pipe
}

// New starts an azcopy command line.
func New(opts *Options) *CLI {
	return &CLI{Pipe: Tool.New(opts)}
}

// Login appends "login".
func (c *CLI) Login(opts *LoginOptions) *CLI {
	c.Invoke(loginCmd, opts)
	return c
}

// Copy appends "copy". Source and destination are required.
func (c *CLI) Copy(opts *CopyOptions) *CLI {
	c.Invoke(copyCmd, opts)
	return c
}

// Sync appends "sync". Source and destination are required.
func (c *CLI) Sync(opts *SyncOptions) *CLI {
	c.Invoke(syncCmd, opts)
	return c
}

// Remove appends "remove". The target is required.
func (c *CLI) Remove(opts *RemoveOptions) *CLI {
	c.Invoke(removeCmd, opts)
	return c
}
