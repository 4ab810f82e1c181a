package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/domain/release"
)

// Receipt records the launch inputs assembled by an install.
type Receipt struct {
	VersionID   string
	ReleaseType string
	MainClass   string
	Classpath   string
	NativesDir  string
	JavaPath    string
	AssetsDir   string
	AssetsID    string
	InstalledAt time.Time
}

// Repository loads and stores receipts.
type Repository interface {
	Load(ctx context.Context, versionID string) (*Receipt, error)
	Save(ctx context.Context, receipt *Receipt) error
}

// FileRepository keeps one receipt file per release under the installation root.
type FileRepository struct {
	layout release.Layout
}

var (
	// ErrNotFound is returned when a release has no receipt yet.
	ErrNotFound = errors.New("receipt not found")
	// errIncomplete is returned when a stored receipt lacks a field.
	errIncomplete = errors.New("receipt is incomplete")
)

// NewFileRepository creates a repository rooted at layout.
func NewFileRepository(layout release.Layout) *FileRepository {
	return &FileRepository{layout: layout}
}

// Load reads the receipt of versionID.
func (r *FileRepository) Load(_ context.Context, versionID string) (*Receipt, error) {
	if err := release.ValidateName(versionID); err != nil {
		return nil, err
	}

	contents, err := os.ReadFile(filepath.Clean(r.layout.ReceiptPath(versionID)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", versionID, ErrNotFound)
		}

		return nil, fmt.Errorf("read receipt: %w", err)
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}

	return fromStruct(&doc)
}

// Save writes the receipt next to the cached descriptor.
func (r *FileRepository) Save(_ context.Context, receipt *Receipt) error {
	if err := release.ValidateName(receipt.VersionID); err != nil {
		return err
	}

	doc, err := toStruct(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	path := r.layout.ReceiptPath(receipt.VersionID)
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create receipt directory: %w", err)
	}

	if err = os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	return nil
}

// toStruct converts a receipt into its stored representation.
func toStruct(receipt *Receipt) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"version_id":   receipt.VersionID,
		"release_type": receipt.ReleaseType,
		"main_class":   receipt.MainClass,
		"classpath":    receipt.Classpath,
		"natives_dir":  receipt.NativesDir,
		"java_path":    receipt.JavaPath,
		"assets_dir":   receipt.AssetsDir,
		"assets_id":    receipt.AssetsID,
		"installed_at": receipt.InstalledAt.UTC().Format(time.RFC3339Nano),
	})
}

// fromStruct converts the stored representation back into a receipt.
func fromStruct(doc *structpb.Struct) (*Receipt, error) {
	fields := doc.GetFields()
	str := func(key string) string {
		return fields[key].GetStringValue()
	}

	receipt := &Receipt{
		VersionID:   str("version_id"),
		ReleaseType: str("release_type"),
		MainClass:   str("main_class"),
		Classpath:   str("classpath"),
		NativesDir:  str("natives_dir"),
		JavaPath:    str("java_path"),
		AssetsDir:   str("assets_dir"),
		AssetsID:    str("assets_id"),
	}

	for key, value := range map[string]string{
		"version_id": receipt.VersionID,
		"main_class": receipt.MainClass,
		"classpath":  receipt.Classpath,
		"java_path":  receipt.JavaPath,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s: %w", key, errIncomplete)
		}
	}

	if raw := str("installed_at"); raw != "" {
		installedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("installed_at: %w", err)
		}

		receipt.InstalledAt = installedAt
	}

	return receipt, nil
}
