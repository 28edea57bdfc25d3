package main

import (
	mrfsk "github.com/doismellburning/mrfsk/src"
)

func main() {
	mrfsk.SourceMain()
}
