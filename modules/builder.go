package modules

import (
	oneplusxRtd "github.com/prebid/oneplusx-rtd/modules/oneplusx/rtd"
)

// builders returns mapping between module name and its builder
// vendor and module names are chosen based on the module directory name
func builders() ModuleBuilders {
	return ModuleBuilders{
		"oneplusx": {
			"rtd": oneplusxRtd.Builder,
		},
	}
}
