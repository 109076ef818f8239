// Package di wires the intercept stack into a samber/do container
package di

import "github.com/samber/do/v2"

// Injector 类型别名
type Injector = do.Injector

// RootScope 类型别名
type RootScope = do.RootScope

// New 创建新的根注入器
var New = do.New
