// Package media classifies storage locators and reads technical metadata
// out of local audio files. Nothing here writes to the filesystem.
package media

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/amonks/catalog/config"
	"github.com/amonks/catalog/data"
	"github.com/dhowden/tag"
	"github.com/h2non/filetype"
	"go.senan.xyz/taglib"
	"go.uber.org/zap"
)

// Metadata is what could be learned about one file. Pointer fields are nil
// when the container could not tell.
type Metadata struct {
	Path           string       `json:"path"`
	Format         *data.Format `json:"format"`
	DurationMS     *int64       `json:"durationMs"`
	BitrateKbps    *int64       `json:"bitrateKbps"`
	SampleRateHz   *int64       `json:"sampleRateHz"`
	Channels       *int64       `json:"channels"`
	FileSizeBytes  int64        `json:"fileSizeBytes"`
	ChecksumSHA256 string       `json:"checksumSha256"`
	Tags           *Tags        `json:"tags,omitempty"`
}

// Tags are the embedded text tags of a file. They are hints for an
// operator and never copied onto catalog rows.
type Tags struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Year        int    `json:"year,omitempty"`
	TrackNumber int    `json:"trackNumber,omitempty"`
	HasLyrics   bool   `json:"hasLyrics"`
}

// ErrRemote is returned when asked to inspect a locator that is not backed
// by a local file.
var ErrRemote = errors.New("remote locators cannot be inspected")

type Inspector struct {
	root  string
	chunk int
	log   *zap.Logger
}

func NewInspector(cfg config.Config, log *zap.Logger) *Inspector {
	return &Inspector{root: cfg.DataRoot, chunk: cfg.InspectChunkBytes, log: log}
}

func (in *Inspector) Classify(text string) (Locator, error) {
	return ClassifyLocator(in.root, text)
}

func (in *Inspector) CheckReference(text string) error {
	return CheckReference(in.root, text)
}

// InspectLocator classifies text and inspects the file it names.
func (in *Inspector) InspectLocator(text string) (*Metadata, error) {
	loc, err := in.Classify(text)
	if err != nil {
		return nil, err
	}
	if loc.Kind != Local {
		return nil, fmt.Errorf("error inspecting '%s': %w", text, ErrRemote)
	}
	return in.Inspect(loc.Path)
}

// Inspect reads path. Size and checksum are always filled in; everything
// else is best effort, and a file whose container can't be parsed still
// inspects successfully.
func (in *Inspector) Inspect(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening '%s': %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("error reading size of '%s': %w", path, err)
	}

	md := &Metadata{Path: path, FileSizeBytes: info.Size()}

	md.Format = formatFromExtension(path)
	if md.Format == nil {
		md.Format = sniffFormat(f)
	}
	md.Tags = readTags(f)

	if props, err := taglib.ReadProperties(path); err != nil {
		in.log.Debug("no audio properties", zap.String("path", path), zap.Error(err))
	} else {
		if props.Length > 0 {
			md.DurationMS = ptr(int64(math.Round(float64(props.Length.Microseconds()) / 1000)))
		}
		if props.Bitrate > 0 {
			md.BitrateKbps = ptr(int64(props.Bitrate))
		}
		if props.SampleRate > 0 {
			md.SampleRateHz = ptr(int64(props.SampleRate))
		}
		if props.Channels > 0 {
			md.Channels = ptr(int64(props.Channels))
		}
	}

	sum, err := in.checksum(f)
	if err != nil {
		return nil, fmt.Errorf("error checksumming '%s': %w", path, err)
	}
	md.ChecksumSHA256 = sum

	return md, nil
}

// checksum hashes f from the start through a buffer of fixed size, so
// memory use does not grow with the file.
func (in *Inspector) checksum(f *os.File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	hasher := sha256.New()
	buf := make([]byte, in.chunk)
	for {
		n, err := f.Read(buf)
		hasher.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

var extensionFormats = map[string]data.Format{
	"mp3":  data.FormatMP3,
	"aac":  data.FormatAAC,
	"m4a":  data.FormatAAC,
	"ogg":  data.FormatOGG,
	"oga":  data.FormatOGG,
	"flac": data.FormatFLAC,
	"opus": data.FormatOpus,
}

func formatFromExtension(path string) *data.Format {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format, ok := extensionFormats[ext]; ok {
		return &format
	}
	return nil
}

var tagFileTypes = map[tag.FileType]data.Format{
	tag.MP3:  data.FormatMP3,
	tag.M4A:  data.FormatAAC,
	tag.FLAC: data.FormatFLAC,
	tag.OGG:  data.FormatOGG,
}

// sniffFormat guesses the container from the file's leading bytes.
func sniffFormat(f *os.File) *data.Format {
	head := make([]byte, 262)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	n, _ := io.ReadFull(f, head)
	if kind, err := filetype.Match(head[:n]); err == nil && kind != filetype.Unknown {
		if format, ok := extensionFormats[kind.Extension]; ok {
			return &format
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	if _, fileType, err := tag.Identify(f); err == nil {
		if format, ok := tagFileTypes[fileType]; ok {
			return &format
		}
	}
	return nil
}

func readTags(f *os.File) *Tags {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	track, _ := m.Track()
	return &Tags{
		Title:       strings.TrimSpace(m.Title()),
		Artist:      strings.TrimSpace(m.Artist()),
		Album:       strings.TrimSpace(m.Album()),
		Genre:       strings.TrimSpace(m.Genre()),
		Year:        m.Year(),
		TrackNumber: track,
		HasLyrics:   strings.TrimSpace(m.Lyrics()) != "",
	}
}

func ptr[T any](v T) *T { return &v }
