package command

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"resource2code/internal/files"
	"resource2code/model"
)

type saveFileArgs struct {
	File model.CodeFile `json:"file"`
}

type filePathArgs struct {
	FilePath string `json:"filePath"`
}

type pathArgs struct {
	Path string `json:"path"`
}

// saveFile reports true when the file was created and false when an
// existing file was overwritten.
func (s *Service) saveFile(_ context.Context, raw json.RawMessage) (any, error) {
	var args saveFileArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("file.path", args.File.Path); err != nil {
		return nil, err
	}
	created, err := files.SaveFile(args.File.Path, args.File.Content)
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved generated file", zap.String("path", args.File.Path), zap.Bool("created", created))
	return created, nil
}

func (s *Service) fileExists(_ context.Context, raw json.RawMessage) (any, error) {
	var args filePathArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("filePath", args.FilePath); err != nil {
		return nil, err
	}
	return files.FileExists(args.FilePath), nil
}

func (s *Service) fileSystem(_ context.Context, raw json.RawMessage) (any, error) {
	var args pathArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("path", args.Path); err != nil {
		return nil, err
	}
	tree, err := files.Tree(args.Path)
	if err != nil {
		return nil, invalid(err.Error())
	}
	return tree, nil
}
