package upload

import "fmt"

// ArchiveError reports a zip item that failed to extract. It is recovered
// per item: the batch continues with the next item.
type ArchiveError struct {
	Item string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("error processing zip file '%s': %v", e.Item, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// TransferError reports a single object upload that failed. It is
// recovered per file: remaining files and items still upload.
type TransferError struct {
	Key string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to upload '%s': %v", e.Key, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
