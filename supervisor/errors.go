// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package supervisor

import (
	"fmt"

	"github.com/sass-embedded/host-go/sasserr"
)

func protocolErrorf(format string, args ...interface{}) error {
	return &sasserr.ProtocolError{Message: fmt.Sprintf(format, args...)}
}

func lifecycleErrorf(cause error, format string, args ...interface{}) error {
	return &sasserr.LifecycleError{Message: fmt.Sprintf(format, args...), Cause: cause}
}
