// Code generated in the style of mockgen for Installer; hand-written here
// since this module never invokes `go generate`. Mirrors the
// //go:generate mockgen convention used in internal/filesystem/filesystem.go.

package installer

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"
)

// MockInstaller is a mock of the Installer interface.
type MockInstaller struct {
	ctrl     *gomock.Controller
	recorder *MockInstallerMockRecorder
}

// MockInstallerMockRecorder is the mock recorder for MockInstaller.
type MockInstallerMockRecorder struct {
	mock *MockInstaller
}

// NewMockInstaller creates a new mock instance.
func NewMockInstaller(ctrl *gomock.Controller) *MockInstaller {
	mock := &MockInstaller{ctrl: ctrl}
	mock.recorder = &MockInstallerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockInstaller) EXPECT() *MockInstallerMockRecorder {
	return m.recorder
}

// Install mocks base method.
func (m *MockInstaller) Install(ctx context.Context, spec string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Install", ctx, spec)
	ret0, _ := ret[0].(error)
	return ret0
}

// Install indicates an expected call of Install.
func (mr *MockInstallerMockRecorder) Install(ctx, spec interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Install", reflect.TypeOf((*MockInstaller)(nil).Install), ctx, spec)
}

// IsOnPath mocks base method.
func (m *MockInstaller) IsOnPath(name string) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IsOnPath", name)
	ret0, _ := ret[0].(bool)
	return ret0
}

// IsOnPath indicates an expected call of IsOnPath.
func (mr *MockInstallerMockRecorder) IsOnPath(name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsOnPath", reflect.TypeOf((*MockInstaller)(nil).IsOnPath), name)
}

// DeriveName mocks base method.
func (m *MockInstaller) DeriveName(spec string) string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeriveName", spec)
	ret0, _ := ret[0].(string)
	return ret0
}

// DeriveName indicates an expected call of DeriveName.
func (mr *MockInstallerMockRecorder) DeriveName(spec interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeriveName", reflect.TypeOf((*MockInstaller)(nil).DeriveName), spec)
}
