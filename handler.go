package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/validator.v9"
)

// maxUploadMemory is the amount of a multipart body kept in memory. The
// rest is stored in temporary files.
const maxUploadMemory = 32 << 20

// NoResult is a middleware that adapts a gz.HandlerWithResult into a gz.Handler.
func NoResult(handler gz.HandlerWithResult) gz.Handler {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) *gz.ErrMsg {
		_, em := handler(tx, w, r)
		return em
	}
}

type pagHandler func(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg)

// PaginationHandlerWithUser is a middleware handler that wraps a pageHandler
// function and invokes it with the following extra arguments:
// - p: a configured pagination request
// - user: the user requesting the operation. Got from the JWT.
// If failIfNoUser is true the the middleware will fail if the JWT does not
// represent a valid user. Otherwise will pass 'nil' to the inner handler.
// It returns the list of resources, and also writes the pagination
// headers into the HTTP response.
func PaginationHandlerWithUser(handler pagHandler, failIfNoUser bool) gz.HandlerWithResult {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

		// Prepare pagination
		pr, em := newPaginationRequest(r)
		if em != nil {
			return nil, em
		}

		// Get JWT user
		user, em := userFromRequest(tx, r, failIfNoUser)
		if em != nil {
			return nil, em
		}

		list, pagination, em := handler(pr, user, tx, w, r)
		if em != nil {
			return nil, em
		}

		err := gz.WritePaginationHeaders(*pagination, w, r)
		if err != nil {
			return nil, gz.NewErrorMessageWithBase(gz.ErrorUnexpected, err)
		}
		return list, nil
	}
}

// PaginationHandler is a middleware handler that wraps a pageHandler function and
// invokes it with the following extra arguments:
// - p: a configured pagination request
// - user: the user requesting the operation. Got from the JWT.
// It returns the list of resources, and also writes the pagination
// headers into the HTTP response.
func PaginationHandler(handler pagHandler) gz.HandlerWithResult {
	return PaginationHandlerWithUser(handler, false)
}

// newPaginationRequest reads the pagination arguments of the request. The
// configured page size is used when the request does not set one.
func newPaginationRequest(r *http.Request) (*gz.PaginationRequest, *gz.ErrMsg) {
	pr, em := gz.NewPaginationRequest(r)
	if em != nil {
		return nil, em
	}
	if r.URL.Query().Get("per_page") == "" && globals.Config != nil {
		pr.PerPage = globals.Config.PageSize
	}
	return pr, nil
}

type idFn func(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg)

// IDHandler is a middleware handler that wraps an idFn function and
// invokes it with the following extra arguments:
// - id: the numeric id got from the route.
// - user: the user requesting the operation. Can be nil. Got from the JWT.
// Note: if the failIfNoUser is true , this handler will return errors if the JWT
// is invalid or does not exist in DB. Otherwise, if false, the user will be nil.
func IDHandler(idArg string, failIfNoUser bool, handler idFn) gz.HandlerWithResult {
	return func(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
		user, em := userFromRequest(tx, r, failIfNoUser)
		if em != nil {
			return nil, em
		}
		id, em := readID(r, idArg)
		if em != nil {
			return nil, em
		}
		return handler(id, user, tx, w, r)
	}
}

type idPagFn func(id uint, p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg)

// IDPaginationHandler combines IDHandler and PaginationHandler. The JWT is
// optional.
func IDPaginationHandler(idArg string, handler idPagFn) gz.HandlerWithResult {
	return PaginationHandler(func(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
		w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
		id, em := readID(r, idArg)
		if em != nil {
			return nil, nil, em
		}
		return handler(id, p, user, tx, w, r)
	})
}

// readID reads a positive numeric id from the route.
func readID(r *http.Request, idArg string) (uint, *gz.ErrMsg) {
	raw, present := mux.Vars(r)[idArg]
	if !present {
		return 0, gz.NewErrorMessage(gz.ErrorIDNotInRequest)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, gz.NewErrorMessageWithArgs(gz.ErrorIDWrongFormat, err, []string{raw})
	}
	return uint(id), nil
}

// readRelation reads the relation from the route. Unknown relations are
// rejected with a 422.
func readRelation(r *http.Request, arg string) (reputation.Relation, *gz.ErrMsg) {
	raw := mux.Vars(r)[arg]
	rel, ok := reputation.ParseRelation(raw)
	if !ok {
		return "", generics.NewUnprocessableError(nil, []string{"relation:" + raw})
	}
	return rel, nil
}

// userFromRequest returns the user behind the request's JWT. If required is
// false, a missing or unknown identity results in a nil user.
func userFromRequest(tx *gorm.DB, r *http.Request, required bool) (*users.User, *gz.ErrMsg) {
	user, ok, errMsg := getUserFromJWT(tx, r)
	if !ok && ((errMsg.ErrCode != gz.ErrorAuthJWTInvalid &&
		errMsg.ErrCode != gz.ErrorAuthNoUser) || required) {
		return nil, &errMsg
	}
	return user, nil
}

// requireSystemAdmin returns the user behind the JWT if it is a system admin.
func requireSystemAdmin(tx *gorm.DB, r *http.Request) (*users.User, *gz.ErrMsg) {
	user, em := userFromRequest(tx, r, true)
	if em != nil {
		return nil, em
	}
	if !globals.Permissions.IsSystemAdmin(*user.Username) {
		return nil, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}
	return user, nil
}

// ParseStruct reads the http request and decodes sent values
// into the given struct. It uses the isForm bool to know if the values comes
// as "request.Form" values or as "request.Body".
// It also calls validator to validate the struct fields.
func ParseStruct(s interface{}, r *http.Request, isForm bool) *gz.ErrMsg {
	// TODO: stop using globals. Move to own packages.
	if isForm {
		if errs := globals.FormDecoder.Decode(s, r.Form); errs != nil {
			return generics.NewUnprocessableError(errs, getDecodeErrorsExtraInfo(errs))
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(s); err != nil {
			// Well formed JSON with a value of the wrong type is an invalid field
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return generics.NewUnprocessableError(err, []string{typeErr.Field})
			}
			return gz.NewErrorMessageWithBase(gz.ErrorUnmarshalJSON, err)
		}
	}
	// Validate struct values
	if em := ValidateStruct(s); em != nil {
		return em
	}
	return nil
}

// parseBody decodes the request body as a form or as JSON, depending on its
// content type.
func parseBody(s interface{}, r *http.Request) *gz.ErrMsg {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return gz.NewErrorMessageWithBase(gz.ErrorForm, err)
		}
		return ParseStruct(s, r, true)
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return gz.NewErrorMessageWithBase(gz.ErrorForm, err)
		}
		return ParseStruct(s, r, true)
	}
	return ParseStruct(s, r, false)
}

// ValidateStruct Validate struct values using golang validator.v9
func ValidateStruct(s interface{}) *gz.ErrMsg {
	if errs := globals.Validate.Struct(s); errs != nil {
		return generics.NewUnprocessableError(errs, getValidationErrorsExtraInfo(errs))
	}
	return nil
}

// Builds the ErrMsg extra info from the given DecodeErrors
func getDecodeErrorsExtraInfo(err error) []string {
	errs, ok := err.(form.DecodeErrors)
	if !ok {
		return []string{err.Error()}
	}
	extra := make([]string, 0, len(errs))
	for field, er := range errs {
		extra = append(extra, fmt.Sprintf("Field: %s. %v", field, er.Error()))
	}
	return extra
}

// Builds the ErrMsg extra info from the given ValidationErrors
func getValidationErrorsExtraInfo(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	extra := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		extra = append(extra, fmt.Sprintf("%s:%v", fe.StructField(), fe.Value()))
	}
	return extra
}

// getUserFromJWT returns the User associated to the http request's JWT token.
// This function can return ErrorAuthJWTInvalid if the token cannot be
// read, or ErrorAuthNoUser no user with such identity exists in the DB.
func getUserFromJWT(tx *gorm.DB, r *http.Request) (*users.User, bool, gz.ErrMsg) {
	var user *users.User

	// Check if a Private-Token is used, which will supercede a JWT token.
	if token := r.Header.Get("Private-Token"); len(token) > 0 {
		var accessToken *gz.AccessToken
		var err *gz.ErrMsg
		if accessToken, err = gz.ValidateAccessToken(token, tx); err != nil {
			return nil, false, gz.ErrorMessage(gz.ErrorUnauthorized)
		}

		user = new(users.User)
		if err := tx.Where("id = ?", accessToken.UserID).First(user).Error; err != nil {
			return nil, false, *gz.NewErrorMessage(gz.ErrorUnauthorized)
		}
	} else {
		identity, valid := gz.GetUserIdentity(r)
		if !valid {
			return nil, false, gz.ErrorMessage(gz.ErrorAuthJWTInvalid)
		}

		var em *gz.ErrMsg
		user, em = users.ByIdentity(tx, identity, false)
		if em != nil {
			return nil, false, *em
		}
	}

	errMsg := gz.ErrorMessageOK()
	return user, true, errMsg
}

// getRequestFile returns the single multipart form file from the request
// field "file".
func getRequestFile(r *http.Request) (multipart.File, *multipart.FileHeader, *gz.ErrMsg) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorForm, err)
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil, nil, gz.NewErrorMessage(gz.ErrorFormMissingFiles)
	}
	if len(files) > 1 {
		return nil, nil, generics.NewUnprocessableError(nil, []string{"file: a single file is expected"})
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, nil, gz.NewErrorMessageWithBase(gz.ErrorForm, err)
	}
	return f, files[0], nil
}

// fileContentType returns the content type of an uploaded file. Clients
// often send application/octet-stream, so in that case the type is sniffed
// from the file contents.
func fileContentType(f multipart.File, fh *multipart.FileHeader) (string, error) {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// commit commits the request transaction. It is called by handlers that
// write, before the response body is written.
// Note: we commit the TX here on purpose, to be able to detect DB errors
// before writing "data" to ResponseWriter. Once you write data (not headers)
// into it the status code is set to 200 (OK).
func commit(tx *gorm.DB, code int) *gz.ErrMsg {
	if err := tx.Commit().Error; err != nil {
		return gz.NewErrorMessageWithBase(code, err)
	}
	return nil
}
