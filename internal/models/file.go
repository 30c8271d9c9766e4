package models

// File is a single eligible file discovered during enumeration.
// Path is slash-separated and relative to the scan root. Content holds
// the full file bytes and is never mutated after enumeration; every
// File's content passed the text-validity check when it was created.
type File struct {
	Path    string
	Content []byte
}

// Size returns the uncompressed byte length of the file content.
func (f File) Size() int64 {
	return int64(len(f.Content))
}

// TotalSize returns the sum of the byte lengths of all files.
// The result is independent of the order of the slice.
func TotalSize(files []File) int64 {
	var total int64
	for _, f := range files {
		total += f.Size()
	}
	return total
}
