// Package javatools downloads Java runtimes into a per-user store and switches
// JAVA_HOME between them.
package javatools

import (
	"github.com/kira1928/javatools/pkg/config"
	"github.com/kira1928/javatools/pkg/tools"
	"github.com/kira1928/javatools/pkg/version"
)

// Version 是库的当前版本号
var Version = version.Version

// New 加载配置并返回版本管理器。root、urlFile 为空时使用默认位置
func New(root, urlFile string, opts ...tools.Option) (*tools.Manager, error) {
	conf, err := config.Load(root, urlFile, config.DefaultEnvVar)
	if err != nil {
		return nil, err
	}
	return tools.NewManager(conf, opts...), nil
}
