package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

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

func newApp(t *testing.T) (*testutil.Stack, *echoapi.Server) {
	t.Helper()
	s := testutil.NewStack(t)
	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:            s.Conf,
		Logger:          s.Logger,
		Validate:        s.Validate,
		Translator:      s.Translator,
		DisableReqLogs:  true,
		UserSvc:         s.Users,
		StaffSvc:        s.Staff,
		StudentSvc:      s.Students,
		ParentSvc:       s.Parents,
		ClassSvc:        s.Classes,
		SubjectSvc:      s.Subjects,
		FeeSvc:          s.Fees,
		GradeSvc:        s.Grades,
		AttendanceSvc:   s.Attendance,
		TimetableSvc:    s.Timetables,
		EventSvc:        s.Events,
		NotificationSvc: s.Notifications,
		ContentSvc:      s.Contents,
		DashboardSvc:    s.Dashboard,
		UniquePolicy:    s.Policy,
	})
	return s, app
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

// do serves tt against app.
func do(app *echoapi.Server, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, s *testutil.Stack, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, s.Conf), s.Conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

// okBody is the envelope of a successful answer carrying data.
func okBody(t *testing.T, message string, data interface{}) []byte {
	if raw, isRaw := data.([]byte); isRaw {
		data = json.RawMessage(raw)
	}
	return marchallObj(t, echoapi.Response{Success: true, Message: message, Data: data})
}

// errBody is the envelope of a failed answer.
func errBody(t *testing.T, message string, fields ...map[string]string) []byte {
	resp := echoapi.Response{Message: message}
	if len(fields) > 0 {
		resp.Errors = fields[0]
	}
	return marchallObj(t, resp)
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
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
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *echoapi.Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, do(app, tt))
		})
	}
}

// decodeData unmarshals the data of the answer in rec into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "decoding response")
	require.NoError(t, json.Unmarshal(resp.Data, v), "decoding data")
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) echoapi.Response {
	t.Helper()
	var resp echoapi.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "decoding response")
	return resp
}

func idsOf[T any](items []T, id func(T) string) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, id(it))
	}
	return ids
}
