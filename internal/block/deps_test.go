package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDependencies(t *testing.T) {
	code := `import { useState } from 'react'
import { Dialog, DialogPanel } from '@headlessui/react'
import { Bars3Icon, XMarkIcon } from '@heroicons/react/24/outline'
import clsx from "clsx"
import Local from './local'
import Abs from '/abs/thing'
import './styles.css'
import { Fragment } from 'react'

export default function Example() {}`

	require.Equal(t, []string{"react", "@headlessui/react", "@heroicons/react", "clsx"}, ParseDependencies(code))
}

func TestParseDependencies_MultilineImport(t *testing.T) {
	code := "import {\n  Dialog,\n  DialogPanel,\n} from '@headlessui/vue'\n"
	require.Equal(t, []string{"@headlessui/vue"}, ParseDependencies(code))
}

func TestParseDependencies_None(t *testing.T) {
	require.Empty(t, ParseDependencies(`<div class="bg-white"></div>`))
}
