package webview

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/webview/errors"
	"github.com/wippyai/webview/native"
	"github.com/wippyai/webview/resource"
)

// subprocessFlag marks an invocation by the engine as one of its helper
// processes.
const subprocessFlag = "--type"

// exit is replaced in tests.
var exit = os.Exit

// IsSubprocess reports whether args belong to an engine helper process.
func IsSubprocess(args []string) bool {
	for _, a := range args {
		if strings.Contains(a, subprocessFlag) {
			return true
		}
	}
	return false
}

// ExecuteSubprocess hands the process to the engine helper entry point and
// exits when it returns. It only returns if the library cannot be opened.
func ExecuteSubprocess(open native.Opener, args []string) error {
	if open == nil {
		open = native.Open
	}
	lib, err := open(newDispatcher(resource.NewTable(), Logger(), nil))
	if err != nil {
		return errors.Unavailable(err)
	}
	Logger().Debug("executing engine subprocess", zap.Strings("args", args))
	lib.ExecuteSubprocess(args)
	exit(0)
	return nil
}
