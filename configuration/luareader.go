// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/bitmark-inc/lobwallet/fault"
)

var mapper = gluamapper.Mapper{
	Option: gluamapper.Option{
		NameFunc: func(s string) string {
			return s
		},
		TagName: "gluamapper",
	},
}

// ParseConfigurationFile - execute a Lua file and map the table it
// returns onto a configuration structure
//
// globals available to the file:
//   arg[0]      the configuration file name
//   address(s)  checksummed form of a hex address, raises an error if invalid
func ParseConfigurationFile(fileName string, config interface{}) error {
	L := lua.NewState()
	defer L.Close()

	L.OpenLibs()

	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(fileName))
	L.SetGlobal("arg", arg)
	L.SetGlobal("address", L.NewFunction(luaAddress))

	if err := L.DoFile(fileName); nil != err {
		return err
	}

	table, ok := L.Get(L.GetTop()).(*lua.LTable)
	if !ok {
		return fault.ErrConfigurationNotTable
	}
	return mapper.Map(table, config)
}

func luaAddress(L *lua.LState) int {
	s := L.CheckString(1)
	if !common.IsHexAddress(s) {
		L.ArgError(1, "invalid address: "+s)
		return 0
	}
	L.Push(lua.LString(common.HexToAddress(s).Hex()))
	return 1
}
