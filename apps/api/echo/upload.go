package echoapi

import (
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tus/tusd/v2/pkg/filestore"
	"github.com/tus/tusd/v2/pkg/handler"
	"github.com/tus/tusd/v2/pkg/memorylocker"
	"github.com/tus/tusd/v2/pkg/s3store"
	"golang.org/x/exp/slog"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/core/upload"
)

const uploadBasePath = "/v1/aulas/uploads"

// Protocol-level errors for the upload endpoints. The resumable-protocol
// server sends these as plain text with the matching HTTP status.
var (
	errUploadUnauthorized    = handler.NewError("ERR_UNAUTHORIZED", "user not authenticated", http.StatusUnauthorized)
	errUploadNotOwner        = handler.NewError("ERR_FORBIDDEN_OWNERSHIP", "upload session belongs to another user", http.StatusForbidden)
	errUploadWrongTenant     = handler.NewError("ERR_FORBIDDEN_TENANT", "upload session belongs to another escola", http.StatusForbidden)
	errUploadMissingMeta     = handler.NewError("ERR_MISSING_METADATA", "missing required upload metadata", http.StatusBadRequest)
	errUploadBadFormat       = handler.NewError("ERR_UNSUPPORTED_FORMAT", "unsupported audio format", http.StatusUnsupportedMediaType)
	errUploadEmpty           = handler.NewError("ERR_EMPTY_FILE", "upload must not be empty", http.StatusBadRequest)
	errUploadTooLarge        = handler.NewError("ERR_FILE_TOO_LARGE", "upload exceeds the maximum allowed size", http.StatusRequestEntityTooLarge)
	errUploadAulaNotFound    = handler.NewError("ERR_AULA_NOT_FOUND", "aula not found", http.StatusNotFound)
	errUploadNotResumable    = handler.NewError("ERR_UPLOAD_NOT_RESUMABLE", "aula recording is already past the upload phase", http.StatusConflict)
	errUploadDeferredLength  = handler.NewError("ERR_LENGTH_REQUIRED", "upload length must be declared upfront", http.StatusBadRequest)
	errUploadSessionNotFound = handler.NewError("ERR_UPLOAD_NOT_FOUND", "upload session not found", http.StatusNotFound)
)

// newStoreComposer assembles the protocol server's backing store from app
// config: S3 in deployments, the local filesystem in dev and tests. The
// in-memory locker is enough because a session's chunks always hit one process.
func newStoreComposer(conf *core.Config, s3Client *s3.Client) *handler.StoreComposer {
	composer := handler.NewStoreComposer()
	switch conf.Storage.Backend {
	case "s3":
		store := s3store.New(conf.Storage.Bucket, s3Client)
		store.UseIn(composer)
	default:
		store := filestore.New(conf.Storage.LocalDir)
		store.UseIn(composer)
	}
	memorylocker.New().UseIn(composer)
	return composer
}

// registerUploadAPI mounts the resumable upload endpoints. Session creation
// runs the full business validation (metadata, format, size, ownership,
// tenancy, aula state) before a single byte is stored; requests against
// existing sessions re-check ownership and tenancy on every call.
func registerUploadAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *aula.Service,
	composer *handler.StoreComposer,
) error {
	h, err := handler.NewUnroutedHandler(handler.Config{
		BasePath:                uploadBasePath,
		StoreComposer:           composer,
		MaxSize:                 upload.MaxUploadBytes,
		DisableDownload:         true,
		RespectForwardedHeaders: true,
		Logger:                  slog.New(slog.NewTextHandler(os.Stdout, nil)),
		PreUploadCreateCallback: func(hook handler.HookEvent) (handler.HTTPResponse, handler.FileInfoChanges, error) {
			return preUploadCreate(svc, hook)
		},
		PreFinishResponseCallback: func(hook handler.HookEvent) (handler.HTTPResponse, error) {
			return preUploadFinish(svc, hook)
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating upload handler")
	}

	ug := g.Group("/aulas/uploads", jwt, identityMiddleware(), echo.WrapMiddleware(h.Middleware))

	ug.POST("", echo.WrapHandler(http.HandlerFunc(h.PostFile)))

	// The verb handlers read the upload id from the request path with the base
	// path already stripped; session ids are derived object keys and contain
	// slashes, hence the wildcard routes.
	own := sessionOwnershipMiddleware(composer)
	ug.HEAD("/*", wrapSessionHandler(h.HeadFile), own)
	ug.PATCH("/*", wrapSessionHandler(h.PatchFile), own)
	ug.DELETE("/*", wrapSessionHandler(h.DelFile), own)
	return nil
}

func wrapSessionHandler(fn http.HandlerFunc) echo.HandlerFunc {
	return echo.WrapHandler(http.StripPrefix(uploadBasePath+"/", fn))
}

// identityMiddleware copies the JWT claims into the request context so the
// protocol hooks, which never see echo.Context, still know who is calling.
func identityMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			id := upload.Identity{UserID: claims.Subject, EscolaID: claims.EscolaID}

			req := ctx.Request()
			ctx.SetRequest(req.WithContext(upload.ContextWithIdentity(req.Context(), id)))
			return next(ctx)
		}
	}
}

// sessionOwnershipMiddleware authorizes requests against an existing upload
// session by comparing the caller against the metadata recorded at creation.
// A foreign session is indistinguishable from a missing one.
func sessionOwnershipMiddleware(composer *handler.StoreComposer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			rctx := ctx.Request().Context()

			id, err := upload.IdentityFromContext(rctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
			}

			up, err := composer.Core.GetUpload(rctx, ctx.Param("*"))
			if err != nil {
				return echo.NewHTTPError(http.StatusNotFound, errUploadSessionNotFound.Message)
			}
			info, err := up.GetInfo(rctx)
			if err != nil {
				return errors.Wrap(err, "reading upload session info")
			}

			switch upload.Authorize(id, info.MetaData) {
			case nil:
				return next(ctx)
			case upload.ErrForbiddenOwnership:
				return echo.NewHTTPError(http.StatusForbidden, errUploadNotOwner.Message)
			default:
				return echo.NewHTTPError(http.StatusForbidden, errUploadWrongTenant.Message)
			}
		}
	}
}

// preUploadCreate is the session-creation gate. Checks run cheapest-first and
// the first failure aborts the request; the aula row is only touched by the
// final, atomic status transition.
func preUploadCreate(svc *aula.Service, hook handler.HookEvent) (handler.HTTPResponse, handler.FileInfoChanges, error) {
	var empty handler.HTTPResponse

	id, err := upload.IdentityFromContext(hook.Context)
	if err != nil {
		return empty, handler.FileInfoChanges{}, errUploadUnauthorized
	}
	if err := upload.Authorize(id, hook.Upload.MetaData); err != nil {
		return empty, handler.FileInfoChanges{}, toProtocolErr(err)
	}

	meta, err := upload.ParseMeta(hook.Upload.MetaData)
	if err != nil {
		return empty, handler.FileInfoChanges{}, toProtocolErr(err)
	}
	// declared metadata may not impersonate: re-check against the caller now
	// that owner and tenant are known to be present
	if err := upload.Authorize(id, meta.Map()); err != nil {
		return empty, handler.FileInfoChanges{}, toProtocolErr(err)
	}

	if hook.Upload.SizeIsDeferred {
		return empty, handler.FileInfoChanges{}, errUploadDeferredLength
	}
	if _, err := svc.StartUpload(hook.Context, meta, hook.Upload.Size); err != nil {
		return empty, handler.FileInfoChanges{}, toProtocolErr(err)
	}

	changes := handler.FileInfoChanges{
		ID:       upload.NewObjectKey(meta),
		MetaData: meta.Map(),
	}
	return empty, changes, nil
}

// preUploadFinish fires when the last byte lands. Recording the completed
// upload is an absolute update, so a replayed final chunk converges on the
// same state instead of failing.
func preUploadFinish(svc *aula.Service, hook handler.HookEvent) (handler.HTTPResponse, error) {
	var empty handler.HTTPResponse

	meta, err := upload.ParseMeta(hook.Upload.MetaData)
	if err != nil {
		return empty, toProtocolErr(err)
	}
	if _, err := svc.FinishUpload(hook.Context, meta, hook.Upload.ID, hook.Upload.Size); err != nil {
		return empty, toProtocolErr(err)
	}
	return empty, nil
}

func toProtocolErr(err error) error {
	switch errors.Cause(err) {
	case upload.ErrUnauthorized:
		return errUploadUnauthorized
	case upload.ErrForbiddenOwnership:
		return errUploadNotOwner
	case upload.ErrForbiddenTenant:
		return errUploadWrongTenant
	case upload.ErrMissingMetadata:
		return errUploadMissingMeta
	case upload.ErrUnsupportedFormat:
		return errUploadBadFormat
	case upload.ErrEmptyFile:
		return errUploadEmpty
	case upload.ErrFileTooLarge:
		return errUploadTooLarge
	case upload.ErrAulaNotFound:
		return errUploadAulaNotFound
	case aula.ErrNotResumable:
		return errUploadNotResumable
	}
	return err
}
