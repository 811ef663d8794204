// Copyright 2022, Chef.  All rights reserved.
// https://github.com/q191201771/tspsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

// Package mpegts 提供mpegts容器格式的打包与解包
//
// 包含TS packet层的编解码，PSI/SI section的组装与拆分，
// 以及PAT、PMT、SDT、EIT四种表的解析与打包
//
package mpegts

import "github.com/q191201771/naza/pkg/nazalog"

var Log = nazalog.GetGlobalLogger()
