package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"

	"jeffreysprompts/internal/params"
	"jeffreysprompts/internal/store"
)

const maxAvatarSize = 2 << 20 // 2MB

// getProfileHandler godoc
//
//	@Summary		Get a public profile
//	@Tags			profiles
//	@Produce		json
//	@Param			userID	path	string	true	"user id"
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	error
//	@Router			/profiles/{userID} [get]
func (app *application) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	followers, following, err := app.store.Followers.Counts(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"user":            user,
		"followers_count": followers,
		"following_count": following,
	})
}

type updateProfilePayload struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
}

func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var payload updateProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]any{}
	if payload.Username != nil {
		updates["username"] = *payload.Username
	}
	if payload.Bio != nil {
		updates["bio"] = *payload.Bio
	}
	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("nothing to update"))
		return
	}

	id := getIdentity(r)
	if err := app.store.Users.Update(r.Context(), id.UserID, updates); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			app.conflictResponse(w, r, err)
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrInvalid):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), id.UserID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, user)
}

// uploadAvatarHandler accepts a multipart jpeg or png up to 2MB and stores
// it in Cloudinary under the avatars folder.
func (app *application) uploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	if app.cld == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "media uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("avatar must be at most 2MB"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("avatar file is required"))
		return
	}
	defer file.Close()

	switch header.Header.Get("Content-Type") {
	case "image/jpeg", "image/png":
	default:
		app.badRequestResponse(w, r, fmt.Errorf("avatar must be a jpeg or png"))
		return
	}

	id := getIdentity(r)
	resp, err := app.cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder:   "jeffreysprompts/avatars",
		PublicID: id.UserID,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SetAvatar(r.Context(), id.UserID, resp.SecureURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"avatar_url": resp.SecureURL})
}

// followUserHandler subscribes the caller to another user's activity.
// Following someone twice is a no-op, following yourself is an error.
func (app *application) followUserHandler(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")
	id := getIdentity(r)

	if targetID == id.UserID {
		app.badRequestResponse(w, r, errors.New("you cannot follow yourself"))
		return
	}
	if _, err := app.store.Users.GetByID(r.Context(), targetID); err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	if err := app.store.Followers.Follow(r.Context(), id.UserID, targetID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.appendFeedEvent(r, &store.Event{
		ActorID:     id.UserID,
		Type:        store.EventUserFollowed,
		SubjectType: "user",
		SubjectID:   targetID,
	})

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "followed"})
}

func (app *application) unfollowUserHandler(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")
	id := getIdentity(r)

	if _, err := app.store.Users.GetByID(r.Context(), targetID); err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	if err := app.store.Followers.Unfollow(r.Context(), id.UserID, targetID); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "unfollowed"})
}

// feedHandler merges events from everyone the caller follows, newest first.
func (app *application) feedHandler(w http.ResponseWriter, r *http.Request) {
	id := getIdentity(r)

	following, err := app.store.Followers.Following(r.Context(), id.UserID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	p := params.ParsePagination(r.URL.Query())
	events, total, err := app.store.Feed.ListByActors(r.Context(), following, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"events":     events,
		"pagination": p,
	})
}
