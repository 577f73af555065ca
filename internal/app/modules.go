package app

import (
	"github.com/vk/searchengine/internal/registry"
	"github.com/vk/searchengine/modules/blocklist"
	"github.com/vk/searchengine/modules/command"
	"github.com/vk/searchengine/modules/download"
)

// coreModules is the definitive list of step modules compiled into the
// binary.
var coreModules = []registry.Module{
	&command.Module{},
	&download.Module{},
	&blocklist.Module{},
}
