package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/okfines/core"
	testutil "github.com/trezcool/okfines/tests"
)

func Test_userApi_login(t *testing.T) {
	app, repos := setup(t)

	testutil.CreateUser(t, repos.usr, "u1", "Awa Diop", "awa@test.cd", "LordOfTheRings", core.RoleAdmin, "soc-1", true)
	testutil.CreateUser(t, repos.usr, "u2", "Moe Sizlak", "moe@test.cd", "TheSimpsons", core.RoleHomeroom, "soc-1", false)

	tests := []httpTest{
		{
			name:     "empty credentials",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email": "nobody@test.cd", "password": "x"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email": "awa@test.cd", "password": "Mordor"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     []byte(`{"email": "moe@test.cd", "password": "TheSimpsons"}`),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "happy path",
			body:     []byte(`{"email": "Awa@Test.CD", "password": "LordOfTheRings"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	app, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "u1", "Awa Diop", "awa@test.cd", "LordOfTheRings", core.RoleAdmin, "soc-1", true)
	hr := testutil.CreateUser(t, repos.usr, "u2", "Moe Sizlak", "moe@test.cd", "TheSimpsons", core.RoleHomeroom, "soc-1", true)

	body := []byte(`{
		"name": "Ada Okafor",
		"email": "ada@test.cd",
		"role": "student",
		"student_id": "MMC2025-0101",
		"password": "V3ryS3cretPwd",
		"password_confirm": "V3ryS3cretPwd"
	}`)

	tests := []httpTest{
		{
			name:     "authentication required",
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "admin only",
			body:     body,
			token:    getToken(t, hr),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "password too similar to name",
			body:     []byte(`{"name": "Ada Okafor", "email": "ada@test.cd", "role": "student", "student_id": "MMC2025-0101", "password": "adaokafor1", "password_confirm": "adaokafor1"}`),
			token:    getToken(t, admin),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "happy path",
			body:     body,
			token:    getToken(t, admin),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email",
			body:     body,
			token:    getToken(t, admin),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the created student account inherits the admin's society and a normalized student ID
	usr, err := repos.usr.GetUserByEmail(context.Background(), "ada@test.cd")
	require.NoError(t, err)
	assert.Equal(t, "soc-1", usr.SocietyID)
	assert.Equal(t, "MMC2025-00101", usr.StudentID)
	assert.Equal(t, core.RoleStudent, usr.Role)
}

func Test_userApi_retrieve_permissions(t *testing.T) {
	app, repos := setup(t)

	admin := testutil.CreateUser(t, repos.usr, "u1", "Awa Diop", "awa@test.cd", "LordOfTheRings", core.RoleAdmin, "soc-1", true)
	hr := testutil.CreateUser(t, repos.usr, "u2", "Moe Sizlak", "moe@test.cd", "TheSimpsons", core.RoleHomeroom, "soc-1", true)

	tests := []httpTest{
		{
			name:     "admin can read anyone",
			path:     "/v1/users/" + hr.ID,
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, hr),
		},
		{
			name:     "user can read self",
			path:     "/v1/users/" + hr.ID,
			token:    getToken(t, hr),
			wantCode: http.StatusOK,
		},
		{
			name:     "non-admin cannot read others",
			path:     "/v1/users/" + admin.ID,
			token:    getToken(t, hr),
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
