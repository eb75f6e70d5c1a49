package upload

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/application"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/infrastructure/httpclient"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/infrastructure/source/local"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/infrastructure/source/s3"
	"github.com/stegoweb/imagetrigger/internal/shared/infrastructure/config"
)

// Module represents the Upload Trigger module
type Module struct {
	trigger  *application.Trigger
	resolver *application.Resolver
	uploader *httpclient.Uploader
}

// NewModule wires the uploader, the file sources and the trigger. client may
// be nil.
func NewModule(ctx context.Context, uploadCfg config.UploadConfig, sourceCfg config.SourceConfig, client *http.Client, reloader domain.Reloader, observers ...domain.Observer) (*Module, error) {
	uploader, err := httpclient.NewUploader(httpclient.Config{
		ServerURL: uploadCfg.ServerURL,
		Path:      uploadCfg.Path,
		Timeout:   uploadCfg.Timeout,
	}, client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize uploader: %w", err)
	}

	localSource, err := local.NewLocalSource(sourceCfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local source: %w", err)
	}

	var s3Source domain.FileSource
	if sourceCfg.UseS3 {
		s3Source, err = s3.NewS3Source(ctx, s3.S3Config{
			BucketName: sourceCfg.S3BucketName,
			Region:     sourceCfg.S3Region,
			Endpoint:   sourceCfg.S3Endpoint,
			AccessKey:  sourceCfg.S3AccessKey,
			SecretKey:  sourceCfg.S3SecretKey,
			UseSSL:     sourceCfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 source: %w", err)
		}
	}

	return &Module{
		trigger:  application.NewTrigger(uploader, reloader, observers...),
		resolver: application.NewResolver(localSource, s3Source),
		uploader: uploader,
	}, nil
}

// Trigger returns the upload trigger
func (m *Module) Trigger() *application.Trigger {
	return m.trigger
}

// Resolver returns the selection resolver
func (m *Module) Resolver() *application.Resolver {
	return m.resolver
}

// Endpoint returns where uploads are posted
func (m *Module) Endpoint() string {
	return m.uploader.Endpoint()
}
