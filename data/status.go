package data

import "slices"

// Status is the publishing state shared by artists, albums and tracks.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

var Statuses = []Status{StatusDraft, StatusReview, StatusPublished, StatusArchived}

func (s Status) Valid() bool { return slices.Contains(Statuses, s) }

type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeEP          AlbumType = "ep"
	AlbumTypeCompilation AlbumType = "compilation"
)

var AlbumTypes = []AlbumType{AlbumTypeAlbum, AlbumTypeSingle, AlbumTypeEP, AlbumTypeCompilation}

func (t AlbumType) Valid() bool { return slices.Contains(AlbumTypes, t) }

// Quality is an audio encoding tier. A track holds at most one file per
// tier.
type Quality string

const (
	QualityLow      Quality = "low_128"
	QualityStandard Quality = "standard_256"
	QualityHigh     Quality = "high_320"
	QualityLossless Quality = "lossless"
)

// Qualities is ordered from worst to best.
var Qualities = []Quality{QualityLow, QualityStandard, QualityHigh, QualityLossless}

func (q Quality) Valid() bool { return slices.Contains(Qualities, q) }

type Format string

const (
	FormatMP3  Format = "mp3"
	FormatAAC  Format = "aac"
	FormatOGG  Format = "ogg"
	FormatFLAC Format = "flac"
	FormatOpus Format = "opus"
)

// DefaultFormat is what an audio file declares when the caller says
// nothing.
const DefaultFormat = FormatMP3

var Formats = []Format{FormatMP3, FormatAAC, FormatOGG, FormatFLAC, FormatOpus}

func (f Format) Valid() bool { return slices.Contains(Formats, f) }

// Role is the part an artist plays on a track.
type Role string

const (
	RolePrimary  Role = "primary"
	RoleFeatured Role = "featured"
	RoleProducer Role = "producer"
	RoleRemixer  Role = "remixer"
)

var Roles = []Role{RolePrimary, RoleFeatured, RoleProducer, RoleRemixer}

func (r Role) Valid() bool { return slices.Contains(Roles, r) }
