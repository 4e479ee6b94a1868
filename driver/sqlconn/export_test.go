package sqlconn

var IsCommand = isCommand
