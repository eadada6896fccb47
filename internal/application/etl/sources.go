package etl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olist/olap-engine/internal/infrastructure/config"
)

// FileSources holds the open source files for one pipeline run.
type FileSources struct {
	SourceReaders
	files []*os.File
}

// OpenSources opens the configured dataset files. The caller must Close
// the returned sources when the run finishes.
func OpenSources(cfg config.ExtractConfig) (*FileSources, error) {
	fs := &FileSources{}
	open := func(name string) (io.Reader, error) {
		f, err := os.Open(filepath.Join(cfg.DataDir, name))
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("open source file: %w", err)
		}
		fs.files = append(fs.files, f)
		return f, nil
	}

	var err error
	if fs.Customers, err = open(cfg.CustomersFile); err != nil {
		return nil, err
	}
	if fs.Orders, err = open(cfg.OrdersFile); err != nil {
		return nil, err
	}
	if fs.OrderItems, err = open(cfg.OrderItemsFile); err != nil {
		return nil, err
	}
	if fs.Products, err = open(cfg.ProductsFile); err != nil {
		return nil, err
	}
	if fs.Sellers, err = open(cfg.SellersFile); err != nil {
		return nil, err
	}
	return fs, nil
}

// Close closes every file opened for the run.
func (fs *FileSources) Close() error {
	var firstErr error
	for _, f := range fs.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	fs.files = nil
	return firstErr
}
