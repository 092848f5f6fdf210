package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ev-msrp/internal/pricemodel"
)

// modelLoader loads the pipeline the commands run against. Tests swap in
// pricemodel.Load because Init only ever loads once per process.
var modelLoader = initModel

// initModel loads the process-wide pipeline and hands it out through the
// read-only accessor.
func initModel(path string) (*pricemodel.Pipeline, error) {
	if _, err := pricemodel.Init(path); err != nil {
		return nil, err
	}
	return pricemodel.Default()
}

// missingModelMessage is the text shown when the artifact is absent.
func missingModelMessage(path string) string {
	return fmt.Sprintf("Model file not found! Make sure %s exists inside the %s folder.",
		filepath.Base(path), filepath.Dir(path))
}

// loadModel loads the artifact at path. A missing artifact is fatal: the
// returned error carries the message the operator sees before the process exits.
func loadModel(path string) (*pricemodel.Pipeline, error) {
	p, err := modelLoader(path)
	if err != nil {
		if errors.Is(err, pricemodel.ErrArtifactNotFound) {
			msg := missingModelMessage(path)
			zap.L().Error(msg, zap.String("path", path))
			return nil, eris.Wrap(err, msg)
		}
		return nil, eris.Wrap(err, "load model")
	}

	zap.L().Info("model loaded",
		zap.String("path", path),
		zap.String("name", p.Name()),
		zap.String("version", p.Version()),
	)
	return p, nil
}
