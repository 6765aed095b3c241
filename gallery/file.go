package gallery

import (
	"context"
	"encoding/json"
	"path/filepath"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

// openFileDir opens the directory holding path as a bucket and returns the
// key of path inside it. Writes go to a temporary file in the same
// directory and are renamed into place, so readers never see a partial file.
func openFileDir(path string) (*blob.Bucket, string, error) {
	b, err := fileblob.OpenBucket(filepath.Dir(path), &fileblob.Options{
		CreateDir: true,
		NoTempDir: true,
	})
	if err != nil {
		return nil, "", err
	}
	return b, filepath.Base(path), nil
}

// readJSONFile decodes the file at path into v. A missing file leaves v
// untouched and is not an error.
func readJSONFile(path string, v any) error {
	b, key, err := openFileDir(path)
	if err != nil {
		return err
	}
	defer b.Close()

	data, err := b.ReadAll(context.Background(), key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSONFile replaces the file at path with the JSON encoding of v.
func writeJSONFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b, key, err := openFileDir(path)
	if err != nil {
		return err
	}
	if err := b.WriteAll(context.Background(), key, data, &blob.WriterOptions{
		ContentType: "application/json",
	}); err != nil {
		_ = b.Close()
		return err
	}
	return b.Close()
}
