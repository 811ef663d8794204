// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package base 提供被其他多个package依赖的基础内容，自身不依赖工程内其他package
package base

import (
	"os"
	"strings"

	"github.com/q191201771/naza/pkg/bininfo"
)

// 版本信息相关
// tspsi的一部分版本信息使用了naza.bininfo

// TspsiVersion 整个tspsi工程的版本号。注意，该变量由外部脚本修改维护，不要手动在代码中修改
//
const TspsiVersion = "v0.2.0"

var (
	TspsiLibraryName = "tspsi"
	TspsiGithubRepo  = "github.com/q191201771/tspsi"
	TspsiGithubSite  = "https://github.com/q191201771/tspsi"

	// TspsiFullInfo e.g. tspsi v0.2.0 (github.com/q191201771/tspsi)
	TspsiFullInfo = TspsiLibraryName + " " + TspsiVersion + " (" + TspsiGithubRepo + ")"
)

func GetWd() string {
	dir, _ := os.Getwd()
	return dir
}

func LogoutStartInfo() {
	Log.Infof("        wd: %s", GetWd())
	Log.Infof("      args: %s", strings.Join(os.Args, " "))
	Log.Infof("   bininfo: %s", bininfo.StringifySingleLine())
	Log.Infof("   version: %s", TspsiFullInfo)
	Log.Infof("    github: %s", TspsiGithubSite)
}
