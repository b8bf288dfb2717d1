package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/user"
	"github.com/lilypad-dao/lilypad/tests"
)

const (
	froggyAddr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	toadAddr   = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

func Test_userApi_profiles(t *testing.T) {
	f := setup(t)

	froggy := testutil.CreateUser(t, f.usrRepo, froggyAddr, "froggy")
	froggy.Level = user.Level{Number: 1, MinXP: 0}
	named := testutil.CreateUser(t, f.usrRepo, toadAddr, "address")
	named.Level = user.Level{Number: 1, MinXP: 0}

	runHTTPTests(t, f.app, []httpTest{
		{
			name:     "by username",
			method:   http.MethodGet,
			path:     "/v1/users/froggy",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, froggy),
		},
		{
			name:     "by username, case insensitive",
			method:   http.MethodGet,
			path:     "/v1/users/FROGGY",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, froggy),
		},
		{
			name:     "by address, not checksummed",
			method:   http.MethodGet,
			path:     "/v1/users/by-address/" + strings.ToLower(froggyAddr),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, froggy),
		},
		{
			name:     "username shaped like a route",
			method:   http.MethodGet,
			path:     "/v1/users/address",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, named),
		},
		{
			name:     "unknown username",
			method:   http.MethodGet,
			path:     "/v1/users/toad",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name:     "invalid address",
			method:   http.MethodGet,
			path:     "/v1/users/by-address/0xnope",
			wantCode: http.StatusNotFound,
		},
	})
}

func Test_userApi_me(t *testing.T) {
	f := setup(t)

	froggy := testutil.CreateUser(t, f.usrRepo, froggyAddr, "froggy")
	froggy.Level = user.Level{Number: 1, MinXP: 0}
	testutil.CreateUser(t, f.usrRepo, toadAddr, "toad")
	token := getToken(t, froggy, f.conf)

	ghost := froggy
	ghost.ID = 99
	forged := froggy
	forged.Address = toadAddr

	testutil.CreateItem(t, f.db, content.TypeCourse, "Intro to DAOs", "dao")
	testutil.CreateItem(t, f.db, content.TypeResource, "DAO handbook", "dao")

	runHTTPTests(t, f.app, []httpTest{
		{
			name:     "missing token",
			method:   http.MethodGet,
			path:     "/v1/me",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "invalid token",
			method:   http.MethodGet,
			path:     "/v1/me",
			token:    token + "x",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "token of an unknown user",
			method:   http.MethodGet,
			path:     "/v1/me",
			token:    getToken(t, ghost, f.conf),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "token with a different address",
			method:   http.MethodGet,
			path:     "/v1/me",
			token:    getToken(t, forged, f.conf),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "retrieve me",
			method:   http.MethodGet,
			path:     "/v1/me",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, froggy),
		},
		{
			name:     "no courses yet",
			method:   http.MethodGet,
			path:     "/v1/me/courses",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "update with taken username",
			method:   http.MethodPut,
			path:     "/v1/me",
			token:    token,
			body:     []byte(`{"username": "Toad"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name:     "update with invalid username",
			method:   http.MethodPut,
			path:     "/v1/me",
			token:    token,
			body:     []byte(`{"username": "fr-oggy"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "update with invalid image url",
			method:   http.MethodPut,
			path:     "/v1/me",
			token:    token,
			body:     []byte(`{"image_url": "not a url"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "add a resource to the roadmap",
			method:   http.MethodPut,
			path:     "/v1/me/courses/2/roadmap",
			token:    token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "add an unknown course to the roadmap",
			method:   http.MethodPut,
			path:     "/v1/me/courses/42/roadmap",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: content.ErrNotFound.Error()}),
		},
		{
			name:     "add to roadmap",
			method:   http.MethodPut,
			path:     "/v1/me/courses/1/roadmap",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, user.UserCourse{UserID: froggy.ID, CourseID: 1, Roadmap: true}),
		},
		{
			name:     "list courses",
			method:   http.MethodGet,
			path:     "/v1/me/courses",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallList(t, user.UserCourse{UserID: froggy.ID, CourseID: 1, Roadmap: true}),
		},
		{
			name:     "remove from roadmap",
			method:   http.MethodDelete,
			path:     "/v1/me/courses/1/roadmap",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, user.UserCourse{UserID: froggy.ID, CourseID: 1}),
		},
	})
}

func Test_userApi_updateMe(t *testing.T) {
	f := setup(t)

	froggy := testutil.CreateUser(t, f.usrRepo, froggyAddr, "froggy")
	token := getToken(t, froggy, f.conf)

	req, rec := newAuthRequest(http.MethodPut, "/v1/me", token,
		[]byte(`{"username": " Tadpole ", "name": "Froggy", "bio": "ribbit", "image_url": "https://example.com/f.png"}`))
	f.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, froggy.ID, got.ID)
	assert.Equal(t, froggyAddr, got.Address)
	assert.Equal(t, "tadpole", got.Username)
	assert.Equal(t, "Froggy", got.Name)
	assert.Equal(t, "ribbit", got.Bio)
	assert.Equal(t, "https://example.com/f.png", got.ImageURL)
	assert.False(t, got.UpdatedAt.Before(froggy.UpdatedAt))

	// username is kept when omitted
	req, rec = newAuthRequest(http.MethodPut, "/v1/me", token, []byte(`{"bio": "croak"}`))
	f.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "tadpole", got.Username)
	assert.Equal(t, "croak", got.Bio)
	assert.Empty(t, got.Name)
}

func Test_userApi_completeCourse(t *testing.T) {
	f := setup(t)

	froggy := testutil.CreateUser(t, f.usrRepo, froggyAddr, "froggy")
	token := getToken(t, froggy, f.conf)
	for _, title := range []string{"Intro to DAOs", "Governance", "Lending"} {
		testutil.CreateItem(t, f.db, content.TypeCourse, title, "dao")
	}

	complete := func(courseID string) user.UserCourse {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/me/courses/"+courseID+"/complete", token)
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var uc user.UserCourse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uc))
		return uc
	}
	me := func() user.User {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/me", token)
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		return usr
	}

	uc := complete("1")
	assert.True(t, uc.Completed)
	assert.NotNil(t, uc.CompletedAt)
	assert.Equal(t, 1, uc.CourseID)

	usr := me()
	assert.Equal(t, 100, usr.XP)
	assert.Equal(t, user.Level{Number: 2, MinXP: 100}, usr.Level)

	// completing twice awards nothing
	again := complete("1")
	assert.Equal(t, uc.CompletedAt.Unix(), again.CompletedAt.Unix())
	assert.Equal(t, 100, me().XP)

	complete("2")
	complete("3")
	usr = me()
	assert.Equal(t, 300, usr.XP)
	assert.Equal(t, user.Level{Number: 3, MinXP: 300}, usr.Level)

	req, rec := newAuthRequest(http.MethodPost, "/v1/me/courses/9/complete", token)
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
