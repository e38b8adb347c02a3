package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/payment"
	"github.com/trezcool/okfines/core/student"
	"github.com/trezcool/okfines/core/user"
	emailsvc "github.com/trezcool/okfines/services/email"
	dummydb "github.com/trezcool/okfines/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testRepos struct {
	usr user.Repository
	st  student.Repository
	fee fee.Repository
	pmt payment.Repository
}

func setup(t *testing.T) (Server, *testRepos) {
	t.Helper()

	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := dummydb.Open()
	require.NoError(t, err)

	repos := &testRepos{
		usr: dummydb.NewUserRepository(db),
		st:  dummydb.NewStudentRepository(db),
		fee: dummydb.NewFeeRepository(db),
		pmt: dummydb.NewPaymentRepository(db),
	}

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	mailSvc := emailsvc.NewConsoleServiceMock()

	app := NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
			Logger:     testLogger{t},
			Validate:   validate,
			Translator: translator,
			UserSvc:    user.NewService(repos.usr, validate, mailSvc),
			StudentSvc: student.NewService(repos.st, validate, testLogger{t}),
			FeeSvc:     fee.NewService(repos.fee, validate),
			PaymentSvc: payment.NewService(repos.pmt, repos.fee, repos.st, validate, testLogger{t}, mailSvc),
		},
	)
	return app, repos
}

type testLogger struct{ t *testing.T }

func (l testLogger) Enable(bool) {}

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log(msg, args) }

func (l testLogger) Info(msg string, args ...interface{}) { l.t.Log(msg, args) }

func (l testLogger) Warn(msg string, args ...interface{}) { l.t.Log(msg, args) }

func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log(msg, args) }

func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(msg, args) }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
		return
	}
	if tt.wantData == nil {
		return
	}
	eq, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !eq {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}
