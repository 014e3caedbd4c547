package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/media"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Inspector is what the Service needs from media.Inspector.
type Inspector interface {
	Classify(locator string) (media.Locator, error)
	CheckReference(locator string) error
	Inspect(path string) (*media.Metadata, error)
}

// audioFiles validates the supplied audio files, inspects the local ones
// and fills in whatever the caller left out. It also returns the duration
// of the first file that has one, or 0.
func (s *Service) audioFiles(ctx context.Context, inputs []data.AudioFileInput) ([]data.AudioFile, int64, error) {
	files := make([]data.AudioFile, len(inputs))
	paths := make([]string, len(inputs))
	for i, in := range inputs {
		file, path, err := s.audioFile(i, in)
		if err != nil {
			return nil, 0, err
		}
		files[i], paths[i] = file, path
	}

	inspected := make([]*media.Metadata, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.InspectWorkers)
	for i, path := range paths {
		if path == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			md, err := s.inspector.Inspect(path)
			if err != nil {
				return invalid("audioFiles[%d].storageUrl could not be read: %v", i, err)
			}
			inspected[i] = md
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var duration int64
	for i := range files {
		if md := inspected[i]; md != nil {
			backfill(&files[i], md)
			s.log.Debug("inspected audio file",
				zap.String("locator", files[i].StorageURL),
				zap.String("format", string(files[i].Format)),
				zap.Int64p("duration_ms", md.DurationMS),
				zap.Int64("size", md.FileSizeBytes))
		}
		if files[i].Channels == 0 {
			files[i].Channels = data.DefaultChannels
		}
		if d := files[i].DurationMS; duration == 0 && d != nil && *d > 0 {
			duration = *d
		}
	}
	return files, duration, nil
}

// audioFile checks one supplied file. For a local locator it also returns
// the path to inspect.
func (s *Service) audioFile(i int, in data.AudioFileInput) (data.AudioFile, string, error) {
	file := data.AudioFile{
		Quality:        in.Quality,
		Format:         in.Format,
		StorageURL:     strings.TrimSpace(in.StorageURL),
		BitrateKbps:    in.BitrateKbps,
		SampleRateHz:   in.SampleRateHz,
		FileSizeBytes:  in.FileSizeBytes,
		DurationMS:     in.DurationMS,
		ChecksumSHA256: in.ChecksumSHA256,
	}
	if !file.Quality.Valid() {
		return file, "", invalid("audioFiles[%d].quality must be one of %v.", i, data.Qualities)
	}
	if file.Format == "" {
		file.Format = data.DefaultFormat
	}
	if !file.Format.Valid() {
		return file, "", invalid("audioFiles[%d].format must be one of %v.", i, data.Formats)
	}
	for field, v := range map[string]*int64{
		"bitrateKbps":   in.BitrateKbps,
		"sampleRateHz":  in.SampleRateHz,
		"fileSizeBytes": in.FileSizeBytes,
	} {
		if v != nil && *v < 1 {
			return file, "", invalid("audioFiles[%d].%s must be at least 1.", i, field)
		}
	}
	if in.DurationMS != nil && *in.DurationMS < 0 {
		return file, "", invalid("audioFiles[%d].durationMs must not be negative.", i)
	}
	if in.Channels != nil {
		if *in.Channels < 1 || *in.Channels > 2 {
			return file, "", invalid("audioFiles[%d].channels must be 1 or 2.", i)
		}
		file.Channels = *in.Channels
	}
	if in.ChecksumSHA256 != nil {
		file.ChecksumSHA256 = optionalText(*in.ChecksumSHA256)
	}

	loc, err := s.inspector.Classify(file.StorageURL)
	if err != nil {
		return file, "", invalid("audioFiles[%d].storageUrl must be a local data path ('data/...', '/data/...', 'file://...') or remote URL: %v", i, err)
	}
	if loc.Kind != media.Local {
		return file, "", nil
	}
	return file, loc.Path, nil
}

// promotable are the formats inference may switch a file to. A file only
// switches away from the default, never away from a format the caller
// chose.
var promotable = map[data.Format]bool{
	data.FormatAAC:  true,
	data.FormatOGG:  true,
	data.FormatFLAC: true,
	data.FormatOpus: true,
}

func backfill(file *data.AudioFile, md *media.Metadata) {
	if md.Format != nil && file.Format == data.DefaultFormat && promotable[*md.Format] {
		file.Format = *md.Format
	}
	if file.DurationMS == nil {
		file.DurationMS = md.DurationMS
	}
	if file.BitrateKbps == nil {
		file.BitrateKbps = md.BitrateKbps
	}
	if file.SampleRateHz == nil {
		file.SampleRateHz = md.SampleRateHz
	}
	if file.Channels == 0 && md.Channels != nil && *md.Channels >= 1 && *md.Channels <= 2 {
		file.Channels = *md.Channels
	}
	if file.FileSizeBytes == nil {
		size := md.FileSizeBytes
		file.FileSizeBytes = &size
	}
	if file.ChecksumSHA256 == nil && md.ChecksumSHA256 != "" {
		sum := md.ChecksumSHA256
		file.ChecksumSHA256 = &sum
	}
}

// mergeAudio returns the tiers a track will have once files are written
// over stored.
func mergeAudio(stored, files []data.AudioFile, replace bool) []data.AudioFile {
	byQuality := map[data.Quality]data.AudioFile{}
	if !replace {
		for _, f := range stored {
			byQuality[f.Quality] = f
		}
	}
	for _, f := range files {
		byQuality[f.Quality] = f
	}
	merged := make([]data.AudioFile, 0, len(byQuality))
	for _, q := range data.Qualities {
		if f, ok := byQuality[q]; ok {
			merged = append(merged, f)
		}
	}
	return merged
}

func (s *Service) InspectAudioLocator(ctx context.Context, locator string) (*media.Metadata, error) {
	locator = strings.TrimSpace(locator)
	loc, err := s.inspector.Classify(locator)
	if err != nil {
		return nil, &Error{Kind: Validation, Message: "Metadata inference is only available for readable local data/* files.", Err: err}
	}
	if loc.Kind != media.Local {
		return nil, &Error{Kind: Validation, Message: "Metadata inference is only available for readable local data/* files.", Err: fmt.Errorf("'%s' is remote", locator)}
	}
	md, err := s.inspector.Inspect(loc.Path)
	if err != nil {
		return nil, &Error{Kind: Validation, Message: "Metadata inference is only available for readable local data/* files.", Err: err}
	}
	return md, nil
}
